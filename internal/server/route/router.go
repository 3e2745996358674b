package route

import (
	"sync"

	"github.com/trendora/reco/internal/server/controller"
	"github.com/trendora/reco/pkg/httpframework"
)

var initRecoRouterOnce sync.Once

func Init() {
	initRecoRouterOnce.Do(func() {
		httpframework.Instance().GET("/health", controller.NewRecoController().Health)

		recommend := httpframework.Instance().Group("/recommend")
		{
			recommend.GET("", controller.NewRecoController().Recommend)

			products := recommend.Group("/products")
			{
				products.GET("/recommendations", controller.NewRecoController().SimilarProducts)
			}

			search := recommend.Group("/search")
			{
				search.POST("/semantic", controller.NewRecoController().SemanticSearch)
			}
		}
	})
}
