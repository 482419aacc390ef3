package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*domain.Product) ([]*domain.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Product, error)
	ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Product, error)
	Update(dbc dbctx.Context, product *domain.Product) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*domain.Product) ([]*domain.Product, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(products) == 0 {
		return []*domain.Product{}, nil
	}
	if err := tx.WithContext(dbc.Ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Product, error) {
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Product
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

func (r *productRepo) ListByVendorID(dbc dbctx.Context, vendorID uuid.UUID) ([]*domain.Product, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.Product
	if err := tx.WithContext(dbc.Ctx).
		Where("vendor_id = ?", vendorID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) Update(dbc dbctx.Context, product *domain.Product) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&domain.Product{}).Error
}
