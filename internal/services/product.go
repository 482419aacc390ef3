package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type CreateProductInput struct {
	Name         string            `json:"name"`
	CategoryID   *uuid.UUID        `json:"category_id,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

type UpdateProductInput struct {
	Name         *string           `json:"name,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

type ProductService interface {
	Create(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, vendorID, productID uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, vendorID uuid.UUID) ([]*domain.Product, error)
	Update(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, vendorID, productID uuid.UUID) error
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
}

func NewProductService(db *gorm.DB, baseLog *logger.Logger, productRepo repos.ProductRepo) ProductService {
	return &productService{
		db:          db,
		log:         baseLog.With("service", "ProductService"),
		productRepo: productRepo,
	}
}

func (ps *productService) Create(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("product name required")
	}

	custom := datatypes.JSONMap{}
	for k, v := range input.CustomFields {
		custom[k] = v
	}

	products, err := ps.productRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.Product{{
		VendorID:     vendorID,
		Name:         name,
		CategoryID:   input.CategoryID,
		CustomFields: custom,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return products[0], nil
}

func (ps *productService) Get(ctx context.Context, vendorID, productID uuid.UUID) (*domain.Product, error) {
	product, err := ps.productRepo.GetByID(dbctx.Context{Ctx: ctx}, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.VendorID != vendorID {
		return nil, fmt.Errorf("product does not belong to vendor")
	}
	return product, nil
}

func (ps *productService) List(ctx context.Context, vendorID uuid.UUID) ([]*domain.Product, error) {
	products, err := ps.productRepo.ListByVendorID(dbctx.Context{Ctx: ctx}, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (ps *productService) Update(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	product, err := ps.Get(ctx, vendorID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("product name cannot be empty")
		}
		product.Name = name
	}
	if input.CustomFields != nil {
		if product.CustomFields == nil {
			product.CustomFields = datatypes.JSONMap{}
		}
		for k, v := range input.CustomFields {
			product.CustomFields[k] = v
		}
	}

	if err := ps.productRepo.Update(dbctx.Context{Ctx: ctx}, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (ps *productService) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	if _, err := ps.Get(ctx, vendorID, productID); err != nil {
		return err
	}
	if err := ps.productRepo.SoftDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{productID}); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
