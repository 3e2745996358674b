package bootstrap

import (
	"github.com/trendora/reco/internal/config"
	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/pkg/etcd"
	"github.com/trendora/reco/pkg/logger"
	"github.com/trendora/reco/pkg/metric"
	"github.com/trendora/reco/pkg/tracing"
)

// Init wires the pieces every binary needs: env config, logging, metrics,
// tracing and the dynamic config manager backed by the config store.
func Init() {
	config.InitConfig(structs.GetAppConfig())
	logger.Init()
	metric.Init()
	tracing.Init()
	appConfig := structs.GetAppConfig()
	etcd.Init(appConfig.Configs)
	config.InitManager(etcd.Instance()[appConfig.Configs.AppName])
}
