package recommendation

import (
	"sync"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/distributedcache"
	"github.com/trendora/reco/internal/repositories/embedding"
	"github.com/trendora/reco/internal/repositories/inmemorycache"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/upstream/user"
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

// SetMockRecommendationHandler creates the handler with the given repository
// instances. This would be handy in places where we want to create a handler
// with specific database instances.
func SetMockRecommendationHandler(configManager config.Manager, vectorDb vector.Database,
	distributedCache distributedcache.Database, embedder embedding.Provider,
	userClient user.Client, productClient product.Client, popularity *popularityCache) *HandlerV1 {
	once.Do(func() {})
	handlerV1 = &HandlerV1{
		configManager:    configManager,
		vectorDb:         vectorDb,
		distributedCache: distributedCache,
		embedder:         embedder,
		userClient:       userClient,
		productClient:    productClient,
		popularity:       popularity,
	}
	return handlerV1
}

// NewPopularityCacheWithStore builds a popularity cache over the given store.
// Use only in tests.
func NewPopularityCacheWithStore(cache inmemorycache.Cache) *popularityCache {
	return &popularityCache{cache: cache}
}
