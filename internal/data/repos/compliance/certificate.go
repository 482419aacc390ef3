package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

// CertificateRepo deliberately has no hard-delete method: certificates
// are retained for compliance history and only ever soft-deleted.
type CertificateRepo interface {
	Create(dbc dbctx.Context, certs []*domain.Certificate) ([]*domain.Certificate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Certificate, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Certificate, error)
	ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Certificate, error)
	ListUnlinkedByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Certificate, error)
	ListByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]*domain.Certificate, error)
	SetProductID(dbc dbctx.Context, certID uuid.UUID, productID *uuid.UUID) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) Create(dbc dbctx.Context, certs []*domain.Certificate) ([]*domain.Certificate, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(certs) == 0 {
		return []*domain.Certificate{}, nil
	}
	if err := tx.WithContext(dbc.Ctx).Create(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Certificate, error) {
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}

func (r *certificateRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Certificate, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Certificate
	if len(ids) == 0 {
		return results, nil
	}
	if err := tx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *certificateRepo) ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Certificate, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Certificate
	if err := tx.WithContext(dbc.Ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *certificateRepo) ListUnlinkedByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Certificate, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Certificate
	if err := tx.WithContext(dbc.Ctx).
		Where("vendor_id = ? AND product_id IS NULL", vendorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *certificateRepo) ListByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]*domain.Certificate, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Certificate
	if len(productIDs) == 0 {
		return results, nil
	}
	if err := tx.WithContext(dbc.Ctx).
		Where("product_id IN ?", productIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SetProductID links (non-nil) or unlinks (nil) a certificate.
func (r *certificateRepo) SetProductID(dbc dbctx.Context, certID uuid.UUID, productID *uuid.UUID) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Ctx).
		Model(&domain.Certificate{}).
		Where("id = ?", certID).
		Update("product_id", productID).Error
}

func (r *certificateRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Model(&domain.Certificate{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *certificateRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&domain.Certificate{}).Error
}
