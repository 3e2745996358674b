package semantic_search

import (
	"sync"

	"github.com/trendora/reco/internal/repositories/embedding"
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

// SetMockSemanticSearchHandler creates the handler with the given repository
// instances. Use only in tests.
func SetMockSemanticSearchHandler(vectorDb vector.Database, embedder embedding.Provider) *HandlerV1 {
	once.Do(func() {})
	handlerV1 = &HandlerV1{
		vectorDb: vectorDb,
		embedder: embedder,
	}
	return handlerV1
}
