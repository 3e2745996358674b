package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/pkg/config"
)

func InitConfig(appConfig *structs.AppConfig) {
	config.InitEnv()
	staticConfig := appConfig.GetStaticConfig()
	cfg, ok := staticConfig.(*structs.Configs)
	if !ok {
		log.Fatal("Failed to cast static config to *Configs")
	}
	bindEnvVars()
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Failed to unmarshal config from environment: %v", err)
	}
}

func bindEnvVars() {
	viper.BindEnv("app_name", "APP_NAME")
	viper.BindEnv("app_env", "APP_ENV")
	viper.BindEnv("port", "PORT")
	viper.BindEnv("etcd_username", "ETCD_USERNAME")
	viper.BindEnv("etcd_password", "ETCD_PASSWORD")
	viper.BindEnv("etcd_server", "ETCD_SERVER")
	viper.BindEnv("etcd_watcher_enabled", "ETCD_WATCHER_ENABLED")
	viper.BindEnv("redis_addr", "REDIS_ADDR")
	viper.BindEnv("redis_password", "REDIS_PASSWORD")
	viper.BindEnv("redis_db", "REDIS_DB")
	viper.BindEnv("qdrant_host", "QDRANT_HOST")
	viper.BindEnv("qdrant_port", "QDRANT_PORT")
	viper.BindEnv("qdrant_collection", "QDRANT_COLLECTION")
	viper.BindEnv("qdrant_timeout_in_ms", "QDRANT_TIMEOUT_IN_MS")
	viper.BindEnv("embedding_model", "EMBEDDING_MODEL")
	viper.BindEnv("embedding_dimension", "EMBEDDING_DIMENSION")
	viper.BindEnv("embedding_api_key", "EMBEDDING_API_KEY")
	viper.BindEnv("embedding_consumer_id", "EMBEDDING_CONSUMER_ID")
	viper.BindEnv("indexer_rate_per_second", "INDEXER_RATE_PER_SECOND")
	viper.BindEnv("popularity_cache_size_mb", "POPULARITY_CACHE_SIZE_MB")
	viper.BindEnv("popularity_cache_ttl_secs", "POPULARITY_CACHE_TTL_SECS")
}
