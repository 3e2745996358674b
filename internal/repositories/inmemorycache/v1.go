package inmemorycache

import (
	"math/rand"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/pkg/metric"
)

var (
	metricUpdateInterval = 10 * time.Minute
	HitRate              = "in_memory_cache_hit_rate"
	ItemCount            = "in_memory_cache_item_count"
	EvacuateCount        = "in_memory_cache_evacuate_count"
	ExpiryCount          = "in_memory_cache_expiry_count"
)

var (
	instance Cache
	once     sync.Once
)

type FreeCache struct {
	cache        *freecache.Cache
	ttlInSeconds int
}

func initFreeCache() Cache {
	if instance == nil {
		once.Do(func() {
			cfg := structs.GetAppConfig().Configs
			sizeMb := cfg.PopularityCacheSizeMb
			if sizeMb == 0 {
				sizeMb = 16
			}
			ttl := cfg.PopularityCacheTtlSecs
			if ttl == 0 {
				ttl = 300
			}
			cache := freecache.NewCache(sizeMb * 1024 * 1024)
			go publishMetric(cache)
			instance = &FreeCache{
				cache:        cache,
				ttlInSeconds: ttl,
			}
		})
	}
	return instance
}

func (f *FreeCache) Get(key string) ([]byte, bool) {
	v, err := f.cache.Get([]byte(key))
	if err != nil {
		log.Debug().Msgf("in-memory cache miss for key: %s", key)
		return nil, false
	}
	return v, true
}

func (f *FreeCache) Set(key string, data []byte) error {
	ttlInSeconds := getFinalTTLWithJitter(f.ttlInSeconds)
	err := f.cache.Set([]byte(key), data, ttlInSeconds)
	if err != nil {
		metric.Count("in_memory_cache_set_failure", 1, []string{"cache_type", "in_memory"})
		return err
	}
	return nil
}

func (f *FreeCache) Del(key string) {
	f.cache.Del([]byte(key))
}

func getFinalTTLWithJitter(ttl int) int {
	jitterRange := ttl / 10
	if jitterRange == 0 {
		return ttl
	}
	return ttl + rand.Intn(2*jitterRange+1) - jitterRange
}

func publishMetric(cache *freecache.Cache) {
	ticker := time.NewTicker(metricUpdateInterval)
	cacheMetricTags := metric.BuildTag(metric.NewTag("cache_name", "popularity"))
	defer func() {
		ticker.Stop()
		if r := recover(); r != nil {
			metric.Count("in_memory_cache_panic_count", 1, nil)
		}
	}()
	for range ticker.C {
		metric.Gauge(HitRate, cache.HitRate(), cacheMetricTags)
		metric.Gauge(ItemCount, float64(cache.EntryCount()), cacheMetricTags)
		metric.Gauge(EvacuateCount, float64(cache.EvacuateCount()), cacheMetricTags)
		metric.Gauge(ExpiryCount, float64(cache.ExpiredCount()), cacheMetricTags)
	}
}
