package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/forPelevin/viralcut/internal/http/handlers"
	httpMW "github.com/forPelevin/viralcut/internal/http/middleware"
)

type RouterConfig struct {
	HealthHandler *httpH.HealthHandler
	ClipsHandler  *httpH.ClipsHandler
	RunsHandler   *httpH.RunsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Banner)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.ClipsHandler != nil {
		r.POST("/clips", cfg.ClipsHandler.Create)
	}
	if cfg.RunsHandler != nil {
		r.GET("/runs/:id", cfg.RunsHandler.Get)
		r.GET("/runs/:id/files/:name", cfg.RunsHandler.File)
	}
	return r
}
