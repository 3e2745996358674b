package inmemorycache

import (
	"github.com/rs/zerolog/log"
)

const DefaultVersion = 1

// NewCache returns the in-memory cache for the given version.
func NewCache(version int) Cache {
	switch version {
	case 1:
		return initFreeCache()
	default:
		log.Panic().Msgf("in-memory cache version %d not supported", version)
	}
	return nil
}
