package distributedcache

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/pkg/infra"
	"github.com/trendora/reco/pkg/metric"
)

const userVectorKeyPrefix = "user_vector:"

var (
	cacheDB Database

	cacheTags = []string{"cache_type", "redis"}
)

type Redis struct {
	client *goredis.Client
}

func initRedisCache() Database {
	if cacheDB == nil {
		once.Do(func() {
			client := infra.GetRedisClient()
			if client == nil {
				log.Panic().Msg("redis client not initialized, call infra.InitRedis first")
			}
			cacheDB = &Redis{client: client}
		})
	}
	return cacheDB
}

func (r *Redis) GetUserVector(ctx context.Context, userId string) ([]float32, error) {
	startTime := time.Now()
	metric.Incr("distributed_cache_get", cacheTags)
	val, err := r.client.Get(ctx, userVectorKeyPrefix+userId).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			metric.Incr("distributed_cache_miss", cacheTags)
			return nil, ErrCacheMiss
		}
		metric.Incr("distributed_cache_get_failure", cacheTags)
		log.Error().Msgf("Error fetching user vector from distributed cache for user %s: %v", userId, err)
		return nil, err
	}
	embedding, err := decodeVector(val)
	if err != nil {
		metric.Incr("distributed_cache_get_failure", cacheTags)
		log.Error().Msgf("Corrupt cached vector for user %s: %v", userId, err)
		return nil, err
	}
	metric.Timing("distributed_cache_get_latency", time.Since(startTime), cacheTags)
	return embedding, nil
}

func (r *Redis) SetUserVector(ctx context.Context, userId string, embedding []float32, ttlSeconds int) error {
	if len(embedding) == 0 {
		return nil
	}
	startTime := time.Now()
	metric.Incr("distributed_cache_set", cacheTags)
	finalTTL := getFinalTTLWithJitter(ttlSeconds)
	err := r.client.Set(ctx, userVectorKeyPrefix+userId, encodeVector(embedding), time.Second*time.Duration(finalTTL)).Err()
	if err != nil {
		metric.Incr("distributed_cache_set_failure", cacheTags)
		log.Error().Msgf("Error persisting user vector for user %s: %v", userId, err)
		return err
	}
	metric.Timing("distributed_cache_set_latency", time.Since(startTime), cacheTags)
	return nil
}

func (r *Redis) DeleteUserVector(ctx context.Context, userId string) error {
	err := r.client.Del(ctx, userVectorKeyPrefix+userId).Err()
	if err != nil {
		metric.Incr("distributed_cache_del_failure", cacheTags)
		log.Error().Msgf("Error deleting user vector for user %s: %v", userId, err)
		return err
	}
	return nil
}

// encodeVector packs the embedding as little endian float32s.
func encodeVector(embedding []float32) []byte {
	buf := make([]byte, 4*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, errors.New("cached vector length not a multiple of 4")
	}
	embedding := make([]float32, len(buf)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return embedding, nil
}

// getFinalTTLWithJitter spreads expiries by up to ±10% to avoid stampedes.
func getFinalTTLWithJitter(ttl int) int {
	jitterPercent := 10
	jitterRange := ttl * jitterPercent / 100
	jitter := rand.Intn(2*jitterRange+1) - jitterRange
	finalTTL := ttl + jitter

	if finalTTL < 1 {
		finalTTL = ttl
	}
	return finalTTL
}
