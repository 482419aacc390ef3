package repos

import (
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/data/repos/compliance"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type VendorRepo = compliance.VendorRepo
type UserRepo = compliance.UserRepo
type UserTokenRepo = compliance.UserTokenRepo
type ProductRepo = compliance.ProductRepo
type CertificateRepo = compliance.CertificateRepo
type AuditRunRepo = compliance.AuditRunRepo

func NewVendorRepo(db *gorm.DB, baseLog *logger.Logger) VendorRepo {
	return compliance.NewVendorRepo(db, baseLog)
}
func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return compliance.NewUserRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return compliance.NewUserTokenRepo(db, baseLog)
}
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return compliance.NewProductRepo(db, baseLog)
}
func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return compliance.NewCertificateRepo(db, baseLog)
}
func NewAuditRunRepo(db *gorm.DB, baseLog *logger.Logger) AuditRunRepo {
	return compliance.NewAuditRunRepo(db, baseLog)
}
