package structs

var (
	appConfig AppConfig
)

type AppConfig struct {
	Configs Configs
}

func (cfg *AppConfig) GetStaticConfig() interface{} {
	return &cfg.Configs
}

func GetAppConfig() *AppConfig {
	return &appConfig
}

type Configs struct {
	AppName                string  `mapstructure:"app_name"`
	AppEnv                 string  `mapstructure:"app_env"`
	Port                   int     `mapstructure:"port"`
	EtcdUsername           string  `mapstructure:"etcd_username"`
	EtcdPassword           string  `mapstructure:"etcd_password"`
	EtcdServer             string  `mapstructure:"etcd_server"`
	EtcdWatcherEnabled     bool    `mapstructure:"etcd_watcher_enabled"`
	RedisAddr              string  `mapstructure:"redis_addr"`
	RedisPassword          string  `mapstructure:"redis_password"`
	RedisDB                int     `mapstructure:"redis_db"`
	QdrantHost             string  `mapstructure:"qdrant_host"`
	QdrantPort             int     `mapstructure:"qdrant_port"`
	QdrantCollection       string  `mapstructure:"qdrant_collection"`
	QdrantTimeoutInMs      int     `mapstructure:"qdrant_timeout_in_ms"`
	EmbeddingModel         string  `mapstructure:"embedding_model"`
	EmbeddingDimension     int     `mapstructure:"embedding_dimension"`
	EmbeddingApiKey        string  `mapstructure:"embedding_api_key"`
	EmbeddingConsumerId    string  `mapstructure:"embedding_consumer_id"`
	IndexerRatePerSecond   float64 `mapstructure:"indexer_rate_per_second"`
	PopularityCacheSizeMb  int     `mapstructure:"popularity_cache_size_mb"`
	PopularityCacheTtlSecs int     `mapstructure:"popularity_cache_ttl_secs"`
}
