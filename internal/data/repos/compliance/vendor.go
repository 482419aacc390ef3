package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type VendorRepo interface {
	Create(dbc dbctx.Context, vendors []*domain.Vendor) ([]*domain.Vendor, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Vendor, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Vendor, error)
}

type vendorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVendorRepo(db *gorm.DB, baseLog *logger.Logger) VendorRepo {
	return &vendorRepo{db: db, log: baseLog.With("repo", "VendorRepo")}
}

func (r *vendorRepo) Create(dbc dbctx.Context, vendors []*domain.Vendor) ([]*domain.Vendor, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(vendors) == 0 {
		return []*domain.Vendor{}, nil
	}
	if err := tx.WithContext(dbc.Ctx).Create(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *vendorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Vendor, error) {
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}

func (r *vendorRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Vendor, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Vendor
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
