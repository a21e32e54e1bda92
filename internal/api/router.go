package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/api/handler"
	"github.com/qs3c/aiseo_go_server/internal/api/middleware"
)

type Router struct {
	queryHandler     *handler.QueryHandler
	providersHandler *handler.ProvidersHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	queryHandler *handler.QueryHandler,
	providersHandler *handler.ProvidersHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		queryHandler:     queryHandler,
		providersHandler: providersHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 查询
		api.POST("/query", r.queryHandler.Submit)
		api.GET("/results/:id", r.queryHandler.Get)
		api.GET("/analysis/:id", r.queryHandler.GetAnalysis)
		api.GET("/history", r.queryHandler.History)
		api.GET("/export/:id", r.queryHandler.Export)

		// 元信息
		api.GET("/health", handler.Health)
		api.GET("/providers", r.providersHandler.List)
	}

	return engine
}
