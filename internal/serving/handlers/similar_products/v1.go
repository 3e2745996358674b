package similar_products

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/api"
	"github.com/trendora/reco/pkg/metric"
)

type Handler interface {
	GetSimilar(ctx context.Context, request *Request) (*Response, error)
}

type HandlerV1 struct {
	configManager config.Manager
	vectorDb      vector.Database
	productClient product.Client
}

func InitV1() Handler {
	once.Do(func() {
		handlerV1 = &HandlerV1{
			configManager: config.GetManager(),
			vectorDb:      vector.NewRepository(vector.DefaultVersion),
			productClient: product.NewClient(product.DefaultVersion),
		}
	})
	return handlerV1
}

// GetSimilar returns products closest to the given product in vector space,
// excluding the product itself.
func (h *HandlerV1) GetSimilar(ctx context.Context, request *Request) (*Response, error) {
	startTime := time.Now()
	commonMetricTags := metric.BuildTag(metric.NewTag(metric.TagPath, "similar_products"))
	metric.Incr("similar_products_request", commonMetricTags)

	if isValid, msg := validateSimilarRequest(request); !isValid {
		metric.Incr("similar_products_request_4xx", commonMetricTags)
		return nil, api.NewBadRequestError(msg)
	}
	if request.Limit == 0 {
		request.Limit = defaultLimit
	}
	cfg := h.configManager.GetRecoConfig()

	itemVectors, err := h.vectorDb.GetItemVectors([]string{request.ProductId})
	if err != nil {
		metric.Incr("similar_products_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("product_id", request.ProductId).Msg("failed to fetch product vector")
		return nil, api.NewServiceUnavailableError("similar products unavailable")
	}
	itemVector, ok := itemVectors[request.ProductId]
	if !ok {
		// A product that is not indexed yet has no neighbors, which is not an
		// error worth surfacing to the caller.
		metric.Incr("similar_products_not_indexed", commonMetricTags)
		return &Response{ProductId: request.ProductId, Products: []SimilarResult{}}, nil
	}

	searchResponse, err := h.vectorDb.Search(&vector.SearchRequest{
		Embedding:  itemVector,
		Limit:      request.Limit + searchOverfetch,
		MinScore:   cfg.MinScore,
		ExcludeIds: []string{request.ProductId},
	}, commonMetricTags)
	if err != nil {
		metric.Incr("similar_products_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("product_id", request.ProductId).Msg("vector search failed")
		return nil, api.NewServiceUnavailableError("similar products unavailable")
	}
	candidates := searchResponse.Candidates
	if len(candidates) > request.Limit {
		candidates = candidates[:request.Limit]
	}

	results, err := h.hydrate(ctx, candidates)
	if err != nil {
		metric.Incr("similar_products_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("product_id", request.ProductId).Msg("product hydration failed")
		return nil, api.NewServiceUnavailableError("similar products unavailable")
	}

	metric.Timing("similar_products_latency", time.Since(startTime), commonMetricTags)
	return &Response{ProductId: request.ProductId, Products: results}, nil
}

func (h *HandlerV1) hydrate(ctx context.Context, candidates []*vector.ScoredItem) ([]SimilarResult, error) {
	ids := make([]string, 0, len(candidates))
	scores := make(map[string]float32, len(candidates))
	for _, candidate := range candidates {
		ids = append(ids, candidate.Id)
		scores[candidate.Id] = candidate.Score
	}
	products, err := h.productClient.GetProductsByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]product.Product, len(products))
	for _, p := range products {
		byId[p.Id] = p
	}
	results := make([]SimilarResult, 0, len(candidates))
	for _, candidate := range candidates {
		p, ok := byId[candidate.Id]
		if !ok {
			continue
		}
		results = append(results, SimilarResult{
			Id:       p.Id,
			Title:    p.Title,
			Category: p.Category,
			Price:    p.Price,
			ImageUrl: p.ImageUrl,
			Score:    scores[candidate.Id],
		})
	}
	return results, nil
}
