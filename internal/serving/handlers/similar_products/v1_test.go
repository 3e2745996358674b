package similar_products

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/api"
)

func newHandlerWithMocks() (*HandlerV1, *vector.MockDatabase, *product.MockClient) {
	configManager := &config.MockManager{}
	configManager.On("GetRecoConfig").Return(config.DefaultRecoConfig())
	vectorDb := &vector.MockDatabase{}
	productClient := &product.MockClient{}
	return SetMockSimilarProductsHandler(configManager, vectorDb, productClient), vectorDb, productClient
}

func TestGetSimilar(t *testing.T) {
	handler, vectorDb, productClient := newHandlerWithMocks()
	vectorDb.On("GetItemVectors", []string{"p1"}).Return(map[string][]float32{
		"p1": {0.1, 0.9},
	}, nil)
	vectorDb.On("Search", mock.MatchedBy(func(req *vector.SearchRequest) bool {
		return req.Limit == 10+searchOverfetch &&
			len(req.ExcludeIds) == 1 && req.ExcludeIds[0] == "p1"
	}), mock.Anything).Return(&vector.SearchResponse{Candidates: []*vector.ScoredItem{
		{Id: "p2", Score: 0.95},
		{Id: "p3", Score: 0.90},
	}}, nil)
	productClient.On("GetProductsByIds", mock.Anything, []string{"p2", "p3"}).Return([]product.Product{
		{Id: "p2", Title: "Trail Shoe"},
		{Id: "p3", Title: "Road Shoe"},
	}, nil)

	response, err := handler.GetSimilar(context.Background(), &Request{ProductId: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, "p1", response.ProductId)
	assert.Len(t, response.Products, 2)
	assert.Equal(t, "p2", response.Products[0].Id)
	assert.InDelta(t, 0.95, response.Products[0].Score, 1e-6)
}

func TestGetSimilarTruncatesOverfetch(t *testing.T) {
	handler, vectorDb, productClient := newHandlerWithMocks()
	vectorDb.On("GetItemVectors", []string{"p1"}).Return(map[string][]float32{"p1": {1, 0}}, nil)
	candidates := make([]*vector.ScoredItem, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, &vector.ScoredItem{Id: id, Score: 0.9})
	}
	vectorDb.On("Search", mock.Anything, mock.Anything).Return(&vector.SearchResponse{Candidates: candidates}, nil)
	productClient.On("GetProductsByIds", mock.Anything, []string{"a", "b"}).Return([]product.Product{
		{Id: "a"}, {Id: "b"},
	}, nil)

	response, err := handler.GetSimilar(context.Background(), &Request{ProductId: "p1", Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, response.Products, 2)
}

func TestGetSimilarUnindexedProductIsEmpty(t *testing.T) {
	handler, vectorDb, _ := newHandlerWithMocks()
	vectorDb.On("GetItemVectors", []string{"ghost"}).Return(map[string][]float32{}, nil)

	response, err := handler.GetSimilar(context.Background(), &Request{ProductId: "ghost"})
	assert.NoError(t, err)
	assert.Empty(t, response.Products)
	vectorDb.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGetSimilarStoreDownIsUnavailable(t *testing.T) {
	handler, vectorDb, _ := newHandlerWithMocks()
	vectorDb.On("GetItemVectors", []string{"p1"}).Return(nil, errors.New("connection refused"))

	_, err := handler.GetSimilar(context.Background(), &Request{ProductId: "p1"})
	apiErr := &api.Error{}
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 503, apiErr.StatusCode)
}

func TestGetSimilarValidation(t *testing.T) {
	handler, _, _ := newHandlerWithMocks()

	_, err := handler.GetSimilar(context.Background(), &Request{ProductId: ""})
	apiErr := &api.Error{}
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	_, err = handler.GetSimilar(context.Background(), &Request{ProductId: "p1", Limit: 1000})
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}
