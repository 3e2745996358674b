package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/trendora/reco/internal/serving/handlers/recommendation"
	"github.com/trendora/reco/internal/serving/handlers/semantic_search"
	"github.com/trendora/reco/internal/serving/handlers/similar_products"
	"github.com/trendora/reco/pkg/api"
)

type stubRecommendHandler struct {
	response *recommendation.Response
	err      error
}

func (s *stubRecommendHandler) Recommend(ctx context.Context, request *recommendation.Request) (*recommendation.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type stubSimilarHandler struct {
	response *similar_products.Response
	err      error
}

func (s *stubSimilarHandler) GetSimilar(ctx context.Context, request *similar_products.Request) (*similar_products.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type stubSearchHandler struct {
	response *semantic_search.Response
	err      error
}

func (s *stubSearchHandler) Rerank(ctx context.Context, request *semantic_search.Request) (*semantic_search.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func newTestRouter(recommend recommendation.Handler, similar similar_products.Handler,
	search semantic_search.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := &V1{
		recommendHandler: recommend,
		similarHandler:   similar,
		searchHandler:    search,
	}
	engine := gin.New()
	engine.GET("/health", controller.Health)
	engine.GET("/recommend", controller.Recommend)
	engine.GET("/recommend/products/recommendations", controller.SimilarProducts)
	engine.POST("/recommend/search/semantic", controller.SemanticSearch)
	return engine
}

func TestHealth(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{}, &stubSimilarHandler{}, &stubSearchHandler{})
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRecommendEndpoint(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{response: &recommendation.Response{
		UserId:   "u1",
		Strategy: recommendation.StrategyPersonalized,
		Products: []recommendation.ProductResult{{Id: "p1"}},
	}}, &stubSimilarHandler{}, &stubSearchHandler{})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/recommend?userId=u1&limit=5", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"strategy":"personalized"`)
}

func TestRecommendEndpointBadLimit(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{}, &stubSimilarHandler{}, &stubSearchHandler{})
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/recommend?userId=u1&limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRecommendEndpointMapsApiErrors(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{err: api.NewServiceUnavailableError("recommendation unavailable")},
		&stubSimilarHandler{}, &stubSearchHandler{})
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/recommend?userId=u1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestSimilarProductsEndpoint(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{}, &stubSimilarHandler{response: &similar_products.Response{
		ProductId: "p1",
		Products:  []similar_products.SimilarResult{{Id: "p2", Score: 0.9}},
	}}, &stubSearchHandler{})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/recommend/products/recommendations?productId=p1", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"p2"`)
}

func TestSemanticSearchEndpoint(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{}, &stubSimilarHandler{}, &stubSearchHandler{
		response: &semantic_search.Response{
			Keyword:  "shoes",
			Products: []semantic_search.RankedItem{{Id: "p1", Score: 0.8}},
		},
	})

	body := strings.NewReader(`{"keyword":"shoes","productIds":["p1"],"limit":10}`)
	request := httptest.NewRequest(http.MethodPost, "/recommend/search/semantic", body)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"keyword":"shoes"`)
}

func TestSemanticSearchEndpointRejectsMalformedBody(t *testing.T) {
	engine := newTestRouter(&stubRecommendHandler{}, &stubSimilarHandler{}, &stubSearchHandler{})
	request := httptest.NewRequest(http.MethodPost, "/recommend/search/semantic", strings.NewReader("{"))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
