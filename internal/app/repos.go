package app

import (
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type Repos struct {
	Vendor      repos.VendorRepo
	User        repos.UserRepo
	UserToken   repos.UserTokenRepo
	Product     repos.ProductRepo
	Certificate repos.CertificateRepo
	AuditRun    repos.AuditRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Vendor:      repos.NewVendorRepo(db, log),
		User:        repos.NewUserRepo(db, log),
		UserToken:   repos.NewUserTokenRepo(db, log),
		Product:     repos.NewProductRepo(db, log),
		Certificate: repos.NewCertificateRepo(db, log),
		AuditRun:    repos.NewAuditRunRepo(db, log),
	}
}
