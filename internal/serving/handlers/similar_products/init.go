package similar_products

import (
	"sync"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/vector"
)

var (
	once      sync.Once
	handlerV1 *HandlerV1
)

func GetHandler(version int) Handler {
	switch version {
	case 1:
		return InitV1()
	default:
		return nil
	}
}

// SetMockSimilarProductsHandler creates the handler with the given repository
// instances. Use only in tests.
func SetMockSimilarProductsHandler(configManager config.Manager, vectorDb vector.Database,
	productClient product.Client) *HandlerV1 {
	once.Do(func() {})
	handlerV1 = &HandlerV1{
		configManager: configManager,
		vectorDb:      vectorDb,
		productClient: productClient,
	}
	return handlerV1
}
