package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/bootstrap"
	"github.com/trendora/reco/internal/config/structs"
	"github.com/trendora/reco/internal/consumers/listener"
	"github.com/trendora/reco/pkg/httpframework"
	"github.com/trendora/reco/pkg/tracing"
)

func main() {
	bootstrap.Init()
	appConfig := structs.GetAppConfig()
	defer tracing.ShutdownTracer()

	kafkaListener := listener.NewKafkaListener()
	kafkaListener.Init()
	kafkaListener.Consume()

	// Health endpoint so the orchestrator can probe consumer liveness.
	httpframework.Init()
	httpframework.Instance().GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	port := appConfig.Configs.Port
	if port == 0 {
		port = 8081
	}
	if err := httpframework.Instance().Run(":" + strconv.Itoa(port)); err != nil {
		log.Fatal().Err(err).Msg("http server exited")
	}
}
