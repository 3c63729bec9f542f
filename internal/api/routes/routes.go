// internal/api/routes/routes.go
// Gin 路由註冊

package routes

import (
	"github.com/gin-gonic/gin"

	"contact-relay/internal/api/handlers"
	"contact-relay/internal/api/middlewares"
	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
)

// Dependencies 路由依賴
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	MailRouter *services.MailRouter
	Recorder   *services.ContactRecorder
	Store      services.ContactStore    // 可為 nil
	Previews   *services.PreviewService // 可為 nil
}

// NewRouter 建立 gin.Engine 並註冊所有路由
func NewRouter(deps *Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.AccessLog(deps.Logger.WithComponent("http")))

	RegisterRoutes(router, deps)
	return router
}

// RegisterRoutes 註冊所有路由
func RegisterRoutes(router *gin.Engine, deps *Dependencies) {
	// KeyDB 未連線時不提供預覽
	var keydb handlers.Pinger
	var previews services.PreviewStore
	if deps.Previews != nil {
		keydb = deps.Previews
		previews = deps.Previews
	}
	previewsEnabled := previews != nil && !deps.Config.IsProduction()

	// 初始化 Handlers
	healthHandler := handlers.NewHealthHandler(deps.Store, keydb)
	statusHandler := handlers.NewStatusHandler(deps.Config)
	contactHandler := handlers.NewContactHandler(deps.Config, deps.MailRouter, deps.Recorder, previewsEnabled, deps.Logger)

	// 公開路由
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		api.GET("/_health", statusHandler.Status)

		contact := api.Group("/contact")
		{
			contact.POST("", contactHandler.Submit)

			// 開發環境的 SMTP Sink 預覽
			if previewsEnabled {
				previewHandler := handlers.NewPreviewHandler(previews)
				contact.GET("/preview/:id", previewHandler.Get)
			}
		}
	}
}
