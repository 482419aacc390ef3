package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type AuditRunRepo interface {
	Create(dbc dbctx.Context, runs []*domain.AuditRun) ([]*domain.AuditRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.AuditRun, error)
	ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.AuditRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error
}

type auditRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRunRepo(db *gorm.DB, baseLog *logger.Logger) AuditRunRepo {
	return &auditRunRepo{db: db, log: baseLog.With("repo", "AuditRunRepo")}
}

func (r *auditRunRepo) Create(dbc dbctx.Context, runs []*domain.AuditRun) ([]*domain.AuditRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(runs) == 0 {
		return []*domain.AuditRun{}, nil
	}
	if err := tx.WithContext(dbc.Ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *auditRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.AuditRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var run domain.AuditRun
	if err := tx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *auditRunRepo) ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.AuditRun, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.AuditRun
	if err := tx.WithContext(dbc.Ctx).
		Where("vendor_id = ?", vendorID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auditRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Model(&domain.AuditRun{}).
		Where("id = ?", id).
		Updates(fields).Error
}
