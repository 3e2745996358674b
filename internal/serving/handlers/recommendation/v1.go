package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/repositories/distributedcache"
	"github.com/trendora/reco/internal/repositories/embedding"
	"github.com/trendora/reco/internal/repositories/upstream/product"
	"github.com/trendora/reco/internal/repositories/upstream/user"
	"github.com/trendora/reco/internal/repositories/vector"
	"github.com/trendora/reco/pkg/api"
	"github.com/trendora/reco/pkg/metric"
)

const cacheWriteTimeout = 2 * time.Second

type Handler interface {
	Recommend(ctx context.Context, request *Request) (*Response, error)
}

type HandlerV1 struct {
	configManager    config.Manager
	vectorDb         vector.Database
	distributedCache distributedcache.Database
	embedder         embedding.Provider
	userClient       user.Client
	productClient    product.Client
	popularity       *popularityCache
}

func InitV1() Handler {
	once.Do(func() {
		handlerV1 = &HandlerV1{
			configManager:    config.GetManager(),
			vectorDb:         vector.NewRepository(vector.DefaultVersion),
			distributedCache: distributedcache.NewRepository(distributedcache.DefaultVersion),
			embedder:         embedding.NewProvider(embedding.DefaultVersion),
			userClient:       user.NewClient(user.DefaultVersion),
			productClient:    product.NewClient(product.DefaultVersion),
			popularity:       newPopularityCache(),
		}
	})
	return handlerV1
}

func (h *HandlerV1) Recommend(ctx context.Context, request *Request) (*Response, error) {
	startTime := time.Now()
	commonMetricTags := metric.BuildTag(metric.NewTag(metric.TagPath, "recommend"))
	metric.Incr("recommend_request", commonMetricTags)

	if isValid, msg := validateRecommendRequest(request); !isValid {
		metric.Incr("recommend_request_4xx", commonMetricTags)
		return nil, api.NewBadRequestError(msg)
	}
	if request.Limit == 0 {
		request.Limit = defaultLimit
	}
	cfg := h.configManager.GetRecoConfig()

	cached, cacheErr := h.distributedCache.GetUserVector(ctx, request.UserId)
	cacheHit := cacheErr == nil
	if !cacheHit && !errors.Is(cacheErr, distributedcache.ErrCacheMiss) {
		// A broken cache degrades to a miss, never to an error response.
		log.Warn().Err(cacheErr).Str("user_id", request.UserId).Msg("vector cache read failed, treating as miss")
	}

	sig := h.fetchSignals(ctx, request.UserId, cfg, cacheHit)

	switch decideRoute(cacheHit, sig, cfg.MinBehaviorCount) {
	case routeCacheHit:
		// A cached vector short-circuits aggregation entirely.
		metric.Incr("recommend_vector_cache_hit", commonMetricTags)
		response, err := h.personalize(ctx, request, cached, sig.PurchasedIds, cfg, commonMetricTags)
		if err != nil {
			return nil, err
		}
		metric.Timing("recommend_latency", time.Since(startTime), commonMetricTags)
		return response, nil
	case routeColdStart:
		metric.Incr("recommend_cold_start", commonMetricTags)
		response, err := h.popular(ctx, request, StrategyColdStart)
		if err != nil {
			return nil, err
		}
		metric.Timing("recommend_latency", time.Since(startTime), commonMetricTags)
		return response, nil
	}

	uv, err := h.buildUserVector(ctx, sig, cfg)
	if err != nil {
		if errors.Is(err, embedding.ErrProvider) || errors.Is(err, embedding.ErrProviderTimeout) {
			metric.Incr("recommend_embedding_degraded", commonMetricTags)
			log.Warn().Err(err).Str("user_id", request.UserId).Msg("embedding provider failed, serving popular products")
			return h.popular(ctx, request, StrategyFallback)
		}
		if errors.Is(err, ErrInsufficientSignal) {
			return h.popular(ctx, request, StrategyColdStart)
		}
		metric.Incr("recommend_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("user_id", request.UserId).Msg("failed to build user vector")
		return nil, api.NewServiceUnavailableError("recommendation unavailable")
	}

	if uv.persistable() {
		h.cacheUserVector(request.UserId, uv.Embedding, cfg.VectorCacheTTLSeconds)
	}

	response, err := h.personalize(ctx, request, uv.Embedding, sig.PurchasedIds, cfg, commonMetricTags)
	if err != nil {
		return nil, err
	}
	metric.Timing("recommend_latency", time.Since(startTime), commonMetricTags)
	return response, nil
}

// fetchSignals pulls the user's signals concurrently. The purchase history
// feeds the exclusion filter on every path, while behaviors, interests and
// keywords only feed aggregation, so a cache hit skips those calls. A failing
// upstream call degrades to an empty signal.
func (h *HandlerV1) fetchSignals(ctx context.Context, userId string, cfg *config.RecoConfig, cacheHit bool) *signals {
	sig := &signals{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		purchased, err := h.userClient.GetPurchasedProductIds(groupCtx, userId)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userId).Msg("failed to fetch purchase history")
			return nil
		}
		sig.PurchasedIds = purchased
		return nil
	})
	if !cacheHit {
		group.Go(func() error {
			behaviors, err := h.userClient.GetBehaviors(groupCtx, userId, cfg.BehaviorHistoryDays)
			if err != nil {
				log.Warn().Err(err).Str("user_id", userId).Msg("failed to fetch behaviors")
				return nil
			}
			sig.Behaviors = behaviors
			return nil
		})
		group.Go(func() error {
			interests, err := h.userClient.GetInterests(groupCtx, userId)
			if err != nil {
				log.Warn().Err(err).Str("user_id", userId).Msg("failed to fetch interests")
				return nil
			}
			sig.Interests = interests
			return nil
		})
		group.Go(func() error {
			keywords, err := h.userClient.GetSearchKeywords(groupCtx, userId, cfg.SearchKeywordCount)
			if err != nil {
				log.Warn().Err(err).Str("user_id", userId).Msg("failed to fetch search keywords")
				return nil
			}
			sig.Keywords = keywords
			return nil
		})
	}
	_ = group.Wait()
	return sig
}

// buildUserVector aggregates the fetched signals into a single query vector.
// The search keyword vector is used only when neither behavior nor interest
// produced one, and is never persisted.
func (h *HandlerV1) buildUserVector(ctx context.Context, sig *signals, cfg *config.RecoConfig) (*userVector, error) {
	var behaviorVector []float32
	if len(sig.Behaviors) >= cfg.MinBehaviorCount {
		itemVectors, err := h.vectorDb.GetItemVectors(behaviorProductIds(sig.Behaviors))
		if err != nil {
			return nil, fmt.Errorf("fetching item vectors: %w", err)
		}
		behaviorVector, err = aggregateBehaviorVector(sig.Behaviors, itemVectors, cfg.BehaviorWeights)
		if err != nil {
			return nil, err
		}
	}

	var interestVector []float32
	if len(sig.Interests) > 0 {
		var err error
		interestVector, err = h.embedder.Embed(ctx, interestText(sig.Interests))
		if err != nil {
			return nil, err
		}
	}

	fused, err := fuseVectors(behaviorVector, interestVector, cfg.BehaviorFusionWeight, cfg.InterestFusionWeight)
	if err == nil {
		return &userVector{
			Embedding:   fused,
			HasBehavior: len(behaviorVector) > 0,
			HasInterest: len(interestVector) > 0,
		}, nil
	}
	if !errors.Is(err, ErrInsufficientSignal) {
		return nil, err
	}

	if len(sig.Keywords) == 0 {
		return nil, ErrInsufficientSignal
	}
	searchVector, err := h.embedder.Embed(ctx, searchText(sig.Keywords, cfg.SearchKeywordCount))
	if err != nil {
		return nil, err
	}
	return &userVector{Embedding: searchVector, HasSearch: true}, nil
}

// personalize queries the vector store with the user vector, drops already
// purchased items via the exclusion filter and hydrates the survivors.
func (h *HandlerV1) personalize(ctx context.Context, request *Request, embeddingVec []float32,
	purchasedIds []string, cfg *config.RecoConfig, commonMetricTags []string) (*Response, error) {
	searchResponse, err := h.vectorDb.Search(&vector.SearchRequest{
		Embedding:  embeddingVec,
		Limit:      request.Limit * cfg.CandidateMultiplier,
		MinScore:   cfg.MinScore,
		ExcludeIds: purchasedIds,
	}, commonMetricTags)
	if err != nil {
		metric.Incr("recommend_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("user_id", request.UserId).Msg("vector search failed")
		return nil, api.NewServiceUnavailableError("recommendation unavailable")
	}
	candidates := searchResponse.Candidates
	if len(candidates) > request.Limit {
		candidates = candidates[:request.Limit]
	}
	if len(candidates) == 0 {
		metric.Incr("recommend_no_candidates", commonMetricTags)
		return h.popular(ctx, request, StrategyFallback)
	}

	products, err := h.hydrate(ctx, candidates)
	if err != nil {
		metric.Incr("recommend_request_5xx", commonMetricTags)
		log.Error().Err(err).Str("user_id", request.UserId).Msg("product hydration failed")
		return nil, api.NewServiceUnavailableError("recommendation unavailable")
	}
	return &Response{
		UserId:   request.UserId,
		Strategy: StrategyPersonalized,
		Total:    len(products),
		Products: products,
	}, nil
}

// popular serves the best-seller list, the answer for new users and the safety
// net when the personalized path degrades.
func (h *HandlerV1) popular(ctx context.Context, request *Request, strategy string) (*Response, error) {
	products, err := h.popularity.get(ctx, h.productClient, request.Limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", request.UserId).Msg("failed to fetch popular products")
		return nil, api.NewServiceUnavailableError("recommendation unavailable")
	}
	return &Response{
		UserId:   request.UserId,
		Strategy: strategy,
		Total:    len(products),
		Products: products,
	}, nil
}

// cacheUserVector writes the vector off the request path. A failed write only
// costs the next request a recompute.
func (h *HandlerV1) cacheUserVector(userId string, embeddingVec []float32, ttlSeconds int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Msgf("panic caching user vector for %s: %v", userId, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		if err := h.distributedCache.SetUserVector(ctx, userId, embeddingVec, ttlSeconds); err != nil {
			log.Warn().Err(err).Str("user_id", userId).Msg("failed to cache user vector")
		}
	}()
}

func behaviorProductIds(events []user.BehaviorEvent) []string {
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		if _, ok := seen[event.ProductId]; ok {
			continue
		}
		seen[event.ProductId] = struct{}{}
		ids = append(ids, event.ProductId)
	}
	return ids
}
