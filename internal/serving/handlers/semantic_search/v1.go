package semantic_search

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/repositories/embedding"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/api"
	"github.com/trendora/reco/pkg/metric"
)

// Candidates whose product has no stored vector keep a zero score and their
// original relative order.
const missingVectorScore = float32(0)

type Handler interface {
	Rerank(ctx context.Context, request *Request) (*Response, error)
}

type HandlerV1 struct {
	vectorDb vector.Database
	embedder embedding.Provider
}

func InitV1() Handler {
	once.Do(func() {
		handlerV1 = &HandlerV1{
			vectorDb: vector.NewRepository(vector.DefaultVersion),
			embedder: embedding.NewProvider(embedding.DefaultVersion),
		}
	})
	return handlerV1
}

// Rerank orders the candidate products by semantic similarity to the keyword.
// When the keyword cannot be embedded the original order is returned so search
// stays lexical instead of failing.
func (h *HandlerV1) Rerank(ctx context.Context, request *Request) (*Response, error) {
	startTime := time.Now()
	commonMetricTags := metric.BuildTag(metric.NewTag(metric.TagPath, "semantic_search"))
	metric.Incr("semantic_rerank_request", commonMetricTags)

	if isValid, msg := validateRerankRequest(request); !isValid {
		metric.Incr("semantic_rerank_request_4xx", commonMetricTags)
		return nil, api.NewBadRequestError(msg)
	}
	if request.Limit <= 0 || len(request.ProductIds) == 0 {
		return &Response{Keyword: request.Keyword, Products: []RankedItem{}}, nil
	}
	candidateIds := request.candidateIds()

	keywordVector, err := h.embedder.Embed(ctx, request.Keyword)
	if err != nil {
		metric.Incr("semantic_rerank_degraded", commonMetricTags)
		log.Warn().Err(err).Str("keyword", request.Keyword).Msg("keyword embedding failed, keeping original order")
		return &Response{Keyword: request.Keyword, Products: passthrough(candidateIds)}, nil
	}

	itemVectors, err := h.vectorDb.GetItemVectors(dedupe(candidateIds))
	if err != nil {
		metric.Incr("semantic_rerank_request_5xx", commonMetricTags)
		log.Error().Err(err).Msg("failed to fetch candidate vectors")
		return nil, api.NewServiceUnavailableError("semantic search unavailable")
	}

	ranked := make([]RankedItem, 0, len(candidateIds))
	for _, id := range candidateIds {
		score := missingVectorScore
		if itemVector, ok := itemVectors[id]; ok {
			score = cosineSimilarity(keywordVector, itemVector)
		}
		ranked = append(ranked, RankedItem{Id: id, Score: score})
	}
	// Stable keeps input order for equal scores, which also covers duplicates.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > request.Limit {
		ranked = ranked[:request.Limit]
	}

	metric.Timing("semantic_rerank_latency", time.Since(startTime), commonMetricTags)
	return &Response{Keyword: request.Keyword, Products: ranked}, nil
}

// passthrough keeps the caller's ranking untouched, full length, so a
// degraded rerank is indistinguishable from the lexical result it wraps.
func passthrough(candidateIds []string) []RankedItem {
	items := make([]RankedItem, 0, len(candidateIds))
	for _, id := range candidateIds {
		items = append(items, RankedItem{Id: id})
	}
	return items
}

// cosineSimilarity returns the cosine of the angle between a and b, zero when
// either vector is degenerate or dimensions disagree.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
