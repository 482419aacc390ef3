package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/verdantry/canopy-backend/internal/http/handlers"
	httpMW "github.com/verdantry/canopy-backend/internal/http/middleware"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	ProductHandler     *httpH.ProductHandler
	CertificateHandler *httpH.CertificateHandler
	AuditHandler       *httpH.AuditHandler
	RealtimeHandler    *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.ProductHandler != nil {
			protected.GET("/products", cfg.ProductHandler.List)
			protected.POST("/products", cfg.ProductHandler.Create)
			protected.GET("/products/:id", cfg.ProductHandler.Get)
			protected.PATCH("/products/:id", cfg.ProductHandler.Update)
			protected.DELETE("/products/:id", cfg.ProductHandler.Delete)
		}

		if cfg.CertificateHandler != nil {
			protected.GET("/certificates", cfg.CertificateHandler.List)
			protected.POST("/certificates/upload", cfg.CertificateHandler.Upload)
			protected.POST("/certificates/:id/link", cfg.CertificateHandler.Link)
			protected.POST("/certificates/:id/unlink", cfg.CertificateHandler.Unlink)
			protected.POST("/certificates/:id/parse", cfg.CertificateHandler.Parse)
			protected.DELETE("/certificates/:id", cfg.CertificateHandler.Delete)
		}

		if cfg.AuditHandler != nil {
			protected.GET("/compliance/plan", cfg.AuditHandler.Plan)
			protected.POST("/compliance/audit", cfg.AuditHandler.Start)
			protected.GET("/compliance/audit", cfg.AuditHandler.List)
			protected.GET("/compliance/audit/:id", cfg.AuditHandler.Get)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
