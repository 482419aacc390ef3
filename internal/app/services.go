package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/compliance/extract"
	"github.com/verdantry/canopy-backend/internal/platform/gcp"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
	"github.com/verdantry/canopy-backend/internal/realtime/bus"
	"github.com/verdantry/canopy-backend/internal/services"
)

type Services struct {
	// GCP clients, kept so the app can close them on shutdown.
	Bucket   gcp.BucketService
	Document gcp.Document
	Vision   gcp.Vision

	Notifier    services.Notifier
	Auth        services.AuthService
	Product     services.ProductService
	Certificate services.CertificateService
	Parse       services.ParseService
	Audit       services.AuditService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, sseHub *realtime.SSEHub, b bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket service: %w", err)
	}
	document, err := gcp.NewDocument(log)
	if err != nil {
		return Services{}, fmt.Errorf("init document ai client: %w", err)
	}
	vision, err := gcp.NewVision(log)
	if err != nil {
		return Services{}, fmt.Errorf("init vision client: %w", err)
	}

	rules, err := extract.LoadRules(cfg.COAFieldRulesPath)
	if err != nil {
		return Services{}, fmt.Errorf("load coa field rules: %w", err)
	}

	notifier := services.NewNotifier(log, sseHub, b)
	authService := services.NewAuthService(db, log, r.Vendor, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	productService := services.NewProductService(db, log, r.Product)
	certService := services.NewCertificateService(db, log, r.Certificate, r.Product, bucket, notifier)
	parseService := services.NewParseService(
		db,
		log,
		r.Certificate,
		r.Product,
		bucket,
		document,
		vision,
		rules,
		notifier,
		cfg.DocAIProjectID,
		cfg.DocAILocation,
		cfg.DocAIProcessorID,
	)
	auditService := services.NewAuditService(
		db,
		log,
		r.Product,
		r.Certificate,
		r.AuditRun,
		certService,
		parseService,
		notifier,
		cfg.AuditConcurrency,
		cfg.AuditCallTimeout,
	)

	return Services{
		Bucket:   bucket,
		Document: document,
		Vision:   vision,

		Notifier:    notifier,
		Auth:        authService,
		Product:     productService,
		Certificate: certService,
		Parse:       parseService,
		Audit:       auditService,
	}, nil
}
