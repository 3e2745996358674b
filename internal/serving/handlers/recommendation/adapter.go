package recommendation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/repositories/inmemorycache"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/vector"
)

// hydrate turns scored candidates into catalog products, keeping the ranking
// order of the candidates. Ids the catalog no longer knows are dropped.
func (h *HandlerV1) hydrate(ctx context.Context, candidates []*vector.ScoredItem) ([]ProductResult, error) {
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
	results := make([]ProductResult, 0, len(candidates))
	for _, candidate := range candidates {
		p, ok := byId[candidate.Id]
		if !ok {
			continue
		}
		results = append(results, adaptProduct(p, scores[candidate.Id]))
	}
	return results, nil
}

func adaptProduct(p product.Product, score float32) ProductResult {
	return ProductResult{
		Id:       p.Id,
		Title:    p.Title,
		Category: p.Category,
		Price:    p.Price,
		ImageUrl: p.ImageUrl,
		Score:    score,
	}
}

// popularityCache keeps the hot product list in process memory so cold-start
// traffic does not hammer the product service.
type popularityCache struct {
	cache inmemorycache.Cache
}

func newPopularityCache() *popularityCache {
	return &popularityCache{cache: inmemorycache.NewCache(inmemorycache.DefaultVersion)}
}

func (c *popularityCache) get(ctx context.Context, client product.Client, limit int) ([]ProductResult, error) {
	key := fmt.Sprintf("hot_products:%d", limit)
	if data, ok := c.cache.Get(key); ok {
		var results []ProductResult
		if err := json.Unmarshal(data, &results); err == nil {
			return results, nil
		}
		c.cache.Del(key)
	}
	products, err := client.GetHotProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	results := make([]ProductResult, 0, len(products))
	for _, p := range products {
		results = append(results, adaptProduct(p, 0))
	}
	if data, err := json.Marshal(results); err == nil {
		if err := c.cache.Set(key, data); err != nil {
			log.Warn().Err(err).Msg("failed to cache hot products")
		}
	}
	return results, nil
}
