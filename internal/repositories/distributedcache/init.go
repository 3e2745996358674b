package distributedcache

import (
	"github.com/rs/zerolog/log"
)

const DefaultVersion = 1

// NewRepository returns the distributed cache for the given version.
func NewRepository(version int) Database {
	switch version {
	case 1:
		return initRedisCache()
	default:
		log.Panic().Msgf("distributed cache version %d not supported", version)
	}
	return nil
}
