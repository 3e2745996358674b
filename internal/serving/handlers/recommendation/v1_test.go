package recommendation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/distributedcache"
	"github.com/trendora/reco/internal/repositories/embedding"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/upstream/user"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/api"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	return data, ok
}

func (f *fakeCache) Set(key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = data
	return nil
}

func (f *fakeCache) Del(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
}

type handlerMocks struct {
	configManager    *config.MockManager
	vectorDb         *vector.MockDatabase
	distributedCache *distributedcache.MockDatabase
	embedder         *embedding.MockProvider
	userClient       *user.MockClient
	productClient    *product.MockClient
}

func newHandlerWithMocks() (*HandlerV1, *handlerMocks) {
	m := &handlerMocks{
		configManager:    &config.MockManager{},
		vectorDb:         &vector.MockDatabase{},
		distributedCache: &distributedcache.MockDatabase{},
		embedder:         &embedding.MockProvider{},
		userClient:       &user.MockClient{},
		productClient:    &product.MockClient{},
	}
	m.configManager.On("GetRecoConfig").Return(config.DefaultRecoConfig())
	handler := SetMockRecommendationHandler(m.configManager, m.vectorDb, m.distributedCache,
		m.embedder, m.userClient, m.productClient, NewPopularityCacheWithStore(newFakeCache()))
	return handler, m
}

func expectSignals(m *handlerMocks, behaviors []user.BehaviorEvent, interests, keywords, purchased []string) {
	m.userClient.On("GetBehaviors", mock.Anything, "u1", mock.Anything).Return(behaviors, nil)
	m.userClient.On("GetInterests", mock.Anything, "u1").Return(interests, nil)
	m.userClient.On("GetSearchKeywords", mock.Anything, "u1", mock.Anything).Return(keywords, nil)
	m.userClient.On("GetPurchasedProductIds", mock.Anything, "u1").Return(purchased, nil)
}

func catalog(ids ...string) []product.Product {
	products := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, product.Product{Id: id, Title: "Product " + id})
	}
	return products
}

func TestRecommendValidation(t *testing.T) {
	handler, _ := newHandlerWithMocks()

	_, err := handler.Recommend(context.Background(), &Request{UserId: "  "})
	apiErr := &api.Error{}
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	_, err = handler.Recommend(context.Background(), &Request{UserId: "u1", Limit: 500})
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestRecommendCachedVector(t *testing.T) {
	handler, m := newHandlerWithMocks()
	cached := []float32{0.1, 0.2}
	expectSignals(m, nil, nil, nil, []string{"bought"})
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(cached, nil)
	m.vectorDb.On("Search", mock.MatchedBy(func(req *vector.SearchRequest) bool {
		return assert.ObjectsAreEqual(cached, req.Embedding) &&
			req.Limit == 10*3 &&
			len(req.ExcludeIds) == 1
	}), mock.Anything).Return(&vector.SearchResponse{Candidates: []*vector.ScoredItem{
		{Id: "p1", Score: 0.9},
		{Id: "p2", Score: 0.8},
	}}, nil)
	m.productClient.On("GetProductsByIds", mock.Anything, []string{"p1", "p2"}).Return(catalog("p1", "p2"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyPersonalized, response.Strategy)
	assert.Len(t, response.Products, 2)
	assert.Equal(t, "p1", response.Products[0].Id)
	assert.InDelta(t, 0.9, response.Products[0].Score, 1e-6)
	// No aggregation happened, the cached vector went straight to search.
	m.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestRecommendCachedVectorFetchesOnlyPurchases(t *testing.T) {
	handler, m := newHandlerWithMocks()
	cached := []float32{0.1, 0.2}
	m.userClient.On("GetPurchasedProductIds", mock.Anything, "u1").Return([]string{"bought"}, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(cached, nil)
	m.vectorDb.On("Search", mock.Anything, mock.Anything).Return(&vector.SearchResponse{
		Candidates: []*vector.ScoredItem{{Id: "p1", Score: 0.9}},
	}, nil)
	m.productClient.On("GetProductsByIds", mock.Anything, []string{"p1"}).Return(catalog("p1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyPersonalized, response.Strategy)
	// Only the purchase history is needed for the exclusion filter here.
	m.userClient.AssertNotCalled(t, "GetBehaviors", mock.Anything, mock.Anything, mock.Anything)
	m.userClient.AssertNotCalled(t, "GetInterests", mock.Anything, mock.Anything)
	m.userClient.AssertNotCalled(t, "GetSearchKeywords", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendColdStart(t *testing.T) {
	handler, m := newHandlerWithMocks()
	expectSignals(m, nil, nil, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, distributedcache.ErrCacheMiss)
	m.productClient.On("GetHotProducts", mock.Anything, 10).Return(catalog("hot1", "hot2"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyColdStart, response.Strategy)
	assert.Len(t, response.Products, 2)
	m.vectorDb.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestRecommendColdStartServesFromPopularityCache(t *testing.T) {
	handler, m := newHandlerWithMocks()
	expectSignals(m, nil, nil, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, distributedcache.ErrCacheMiss)
	m.productClient.On("GetHotProducts", mock.Anything, 10).Return(catalog("hot1"), nil).Once()

	_, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	// Second call hits the in-memory popularity cache, no upstream call.
	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyColdStart, response.Strategy)
	m.productClient.AssertNumberOfCalls(t, "GetHotProducts", 1)
}

func TestRecommendPersonalizedFromSignals(t *testing.T) {
	handler, m := newHandlerWithMocks()
	behaviors := []user.BehaviorEvent{
		{ProductId: "b1", EventType: "purchase"},
		{ProductId: "b2", EventType: "view"},
		{ProductId: "b3", EventType: "like"},
	}
	expectSignals(m, behaviors, []string{"fitness", "outdoor"}, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, distributedcache.ErrCacheMiss)
	m.vectorDb.On("GetItemVectors", []string{"b1", "b2", "b3"}).Return(map[string][]float32{
		"b1": {1, 0},
		"b2": {0, 1},
		"b3": {1, 1},
	}, nil)
	m.embedder.On("Embed", mock.Anything, "fitness outdoor").Return([]float32{0.5, 0.5}, nil)

	var persisted []float32
	var persistedMu sync.Mutex
	m.distributedCache.On("SetUserVector", mock.Anything, "u1", mock.Anything, 600).
		Run(func(args mock.Arguments) {
			persistedMu.Lock()
			persisted = args.Get(2).([]float32)
			persistedMu.Unlock()
		}).Return(nil)
	m.vectorDb.On("Search", mock.Anything, mock.Anything).Return(&vector.SearchResponse{
		Candidates: []*vector.ScoredItem{{Id: "p1", Score: 0.7}},
	}, nil)
	m.productClient.On("GetProductsByIds", mock.Anything, []string{"p1"}).Return(catalog("p1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyPersonalized, response.Strategy)

	// The fused vector is written back off the request path.
	assert.Eventually(t, func() bool {
		persistedMu.Lock()
		defer persistedMu.Unlock()
		return persisted != nil
	}, time.Second, 10*time.Millisecond)
}

func TestRecommendSearchVectorNotPersisted(t *testing.T) {
	handler, m := newHandlerWithMocks()
	expectSignals(m, nil, nil, []string{"yoga mat", "dumbbells"}, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, distributedcache.ErrCacheMiss)
	m.embedder.On("Embed", mock.Anything, "yoga mat dumbbells").Return([]float32{0.3, 0.7}, nil)
	m.vectorDb.On("Search", mock.Anything, mock.Anything).Return(&vector.SearchResponse{
		Candidates: []*vector.ScoredItem{{Id: "p1", Score: 0.6}},
	}, nil)
	m.productClient.On("GetProductsByIds", mock.Anything, []string{"p1"}).Return(catalog("p1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyPersonalized, response.Strategy)
	m.distributedCache.AssertNotCalled(t, "SetUserVector", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendEmbeddingFailureFallsBackToPopular(t *testing.T) {
	handler, m := newHandlerWithMocks()
	expectSignals(m, nil, []string{"fitness"}, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, distributedcache.ErrCacheMiss)
	m.embedder.On("Embed", mock.Anything, "fitness").Return(nil, embedding.ErrProviderTimeout)
	m.productClient.On("GetHotProducts", mock.Anything, 10).Return(catalog("hot1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyFallback, response.Strategy)
}

func TestRecommendVectorStoreDownIsUnavailable(t *testing.T) {
	handler, m := newHandlerWithMocks()
	cached := []float32{0.1, 0.2}
	expectSignals(m, nil, nil, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(cached, nil)
	m.vectorDb.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	apiErr := &api.Error{}
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)
}

func TestRecommendCacheFailureIsTreatedAsMiss(t *testing.T) {
	handler, m := newHandlerWithMocks()
	expectSignals(m, nil, nil, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(nil, errors.New("redis down"))
	m.productClient.On("GetHotProducts", mock.Anything, 10).Return(catalog("hot1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyColdStart, response.Strategy)
}

func TestRecommendNoCandidatesFallsBackToPopular(t *testing.T) {
	handler, m := newHandlerWithMocks()
	cached := []float32{0.1, 0.2}
	expectSignals(m, nil, nil, nil, nil)
	m.distributedCache.On("GetUserVector", mock.Anything, "u1").Return(cached, nil)
	m.vectorDb.On("Search", mock.Anything, mock.Anything).Return(&vector.SearchResponse{
		Candidates: []*vector.ScoredItem{},
	}, nil)
	m.productClient.On("GetHotProducts", mock.Anything, 10).Return(catalog("hot1"), nil)

	response, err := handler.Recommend(context.Background(), &Request{UserId: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, StrategyFallback, response.Strategy)
}

func TestHydratePreservesRankAndSkipsUnknownIds(t *testing.T) {
	handler, m := newHandlerWithMocks()
	candidates := []*vector.ScoredItem{
		{Id: "p1", Score: 0.9},
		{Id: "gone", Score: 0.8},
		{Id: "p3", Score: 0.7},
	}
	// Catalog returns out of order and skips the unknown id.
	m.productClient.On("GetProductsByIds", mock.Anything, []string{"p1", "gone", "p3"}).
		Return(catalog("p3", "p1"), nil)

	results, err := handler.hydrate(context.Background(), candidates)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Id)
	assert.Equal(t, "p3", results[1].Id)
}
