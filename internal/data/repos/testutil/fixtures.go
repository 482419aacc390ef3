package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
)

func DBC(tx *gorm.DB) dbctx.Context {
	return dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func SeedVendor(tb testing.TB, tx *gorm.DB, name string) *domain.Vendor {
	tb.Helper()
	vendor := &domain.Vendor{Name: name, LicenseNumber: "LIC-" + uuid.NewString()[:8]}
	if err := tx.Create(vendor).Error; err != nil {
		tb.Fatalf("seed vendor: %v", err)
	}
	return vendor
}

func SeedProduct(tb testing.TB, tx *gorm.DB, vendorID uuid.UUID, name string) *domain.Product {
	tb.Helper()
	product := &domain.Product{
		VendorID:     vendorID,
		Name:         name,
		CustomFields: datatypes.JSONMap{},
	}
	if err := tx.Create(product).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return product
}

func SeedCertificate(tb testing.TB, tx *gorm.DB, vendorID uuid.UUID, fileName string, productID *uuid.UUID) *domain.Certificate {
	tb.Helper()
	cert := &domain.Certificate{
		VendorID:   vendorID,
		ProductID:  productID,
		FileName:   fileName,
		FileURL:    "https://storage.example.com/coas/" + fileName,
		StorageKey: "coas/" + uuid.NewString() + "/" + fileName,
	}
	if err := tx.Create(cert).Error; err != nil {
		tb.Fatalf("seed certificate: %v", err)
	}
	return cert
}
