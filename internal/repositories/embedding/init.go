package embedding

import (
	"github.com/rs/zerolog/log"
)

const DefaultVersion = 1

// NewProvider returns the embedding provider for the given version.
func NewProvider(version int) Provider {
	switch version {
	case 1:
		return initDashScope()
	default:
		log.Panic().Msgf("embedding provider version %d not supported", version)
	}
	return nil
}
