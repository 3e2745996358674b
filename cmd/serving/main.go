package main

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/bootstrap"
	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/internal/server/route"
	"github.com/trendora/reco/pkg/httpframework"
	"github.com/trendora/reco/pkg/infra"
	"github.com/trendora/reco/pkg/tracing"
)

func main() {
	bootstrap.Init()
	appConfig := structs.GetAppConfig()
	infra.InitRedis()
	defer tracing.ShutdownTracer()

	httpframework.Init()
	route.Init()

	port := appConfig.Configs.Port
	if port == 0 {
		port = 8080
	}
	if err := httpframework.Instance().Run(":" + strconv.Itoa(port)); err != nil {
		log.Fatal().Err(err).Msg("http server exited")
	}
}
