package app

import (
	"github.com/gin-gonic/gin"

	"github.com/verdantry/canopy-backend/internal/http"
	httpH "github.com/verdantry/canopy-backend/internal/http/handlers"
	httpMW "github.com/verdantry/canopy-backend/internal/http/middleware"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Product     *httpH.ProductHandler
	Certificate *httpH.CertificateHandler
	Audit       *httpH.AuditHandler
	Realtime    *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(services.Auth),
		Product:     httpH.NewProductHandler(services.Product),
		Certificate: httpH.NewCertificateHandler(services.Certificate, services.Parse),
		Audit:       httpH.NewAuditHandler(services.Audit),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log: log,

		AuthMiddleware: middleware.Auth,

		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		ProductHandler:     handlers.Product,
		CertificateHandler: handlers.Certificate,
		AuditHandler:       handlers.Audit,
		RealtimeHandler:    handlers.Realtime,
	})
}
