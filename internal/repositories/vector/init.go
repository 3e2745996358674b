package vector

import (
	"github.com/rs/zerolog/log"
)

const DefaultVersion = 1

// NewRepository returns the vector database for the given version.
func NewRepository(version int) Database {
	switch version {
	case 1:
		return initQdrantInstance()
	default:
		log.Panic().Msgf("vector repository version %d not supported", version)
	}
	return nil
}
