package controller

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/trendora/reco/internal/serving/handlers/recommendation"
	"github.com/trendora/reco/internal/serving/handlers/semantic_search"
	"github.com/trendora/reco/internal/serving/handlers/similar_products"
	"github.com/trendora/reco/pkg/api"
)

type Reco interface {
	Recommend(ctx *gin.Context)
	SimilarProducts(ctx *gin.Context)
	SemanticSearch(ctx *gin.Context)
	Health(ctx *gin.Context)
}

var (
	recoController Reco
	once           sync.Once
)

type V1 struct {
	recommendHandler recommendation.Handler
	similarHandler   similar_products.Handler
	searchHandler    semantic_search.Handler
}

func NewRecoController() Reco {
	if recoController == nil {
		once.Do(func() {
			recoController = &V1{
				recommendHandler: recommendation.GetHandler(1),
				similarHandler:   similar_products.GetHandler(1),
				searchHandler:    semantic_search.GetHandler(1),
			}
		})
	}
	return recoController
}

// SetMockRecoController overrides the controller singleton in tests.
func SetMockRecoController(recommendHandler recommendation.Handler,
	similarHandler similar_products.Handler, searchHandler semantic_search.Handler) Reco {
	once.Do(func() {})
	recoController = &V1{
		recommendHandler: recommendHandler,
		similarHandler:   similarHandler,
		searchHandler:    searchHandler,
	}
	return recoController
}

func (c *V1) Recommend(ctx *gin.Context) {
	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}
	request := &recommendation.Request{
		UserId: ctx.Query("userId"),
		Limit:  limit,
	}
	response, err := c.recommendHandler.Recommend(ctx.Request.Context(), request)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func (c *V1) SimilarProducts(ctx *gin.Context) {
	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}
	request := &similar_products.Request{
		ProductId: ctx.Query("productId"),
		Limit:     limit,
	}
	response, err := c.similarHandler.GetSimilar(ctx.Request.Context(), request)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func (c *V1) SemanticSearch(ctx *gin.Context) {
	var request semantic_search.Request
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	response, err := c.searchHandler.Rerank(ctx.Request.Context(), &request)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func (c *V1) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseLimit(ctx *gin.Context) (int, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return 0, false
	}
	return limit, true
}

func renderError(ctx *gin.Context, err error) {
	apiErr := &api.Error{}
	if errors.As(err, &apiErr) {
		ctx.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
