package product

import (
	"github.com/rs/zerolog/log"
)

const DefaultVersion = 1

// NewClient returns the product service client for the given version.
func NewClient(version int) Client {
	switch version {
	case 1:
		return initHTTPClient()
	default:
		log.Panic().Msgf("product client version %d not supported", version)
	}
	return nil
}
