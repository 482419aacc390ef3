package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Certificate is an uploaded Certificate of Analysis (COA) file.
// ProductID is NULL until the certificate is linked; the matcher only
// ever considers certificates with a NULL ProductID as candidates.
// Certificates are never hard-deleted.
type Certificate struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"vendor_id"`
	ProductID    *uuid.UUID        `gorm:"type:uuid;column:product_id;index" json:"product_id,omitempty"`
	FileName     string            `gorm:"column:file_name;not null" json:"file_name"`
	FileURL      string            `gorm:"column:file_url" json:"file_url,omitempty"`
	StorageKey   string            `gorm:"column:storage_key;index" json:"storage_key,omitempty"`
	ParsedFields datatypes.JSONMap `gorm:"column:parsed_fields;type:jsonb" json:"parsed_fields,omitempty"`
	TestDate     *time.Time        `gorm:"column:test_date" json:"test_date,omitempty"`
	ExpiryDate   *time.Time        `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	ParsedAt     *time.Time        `gorm:"column:parsed_at" json:"parsed_at,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Certificate) TableName() string { return "certificate" }

// Linked reports whether the certificate is associated with a product.
func (c *Certificate) Linked() bool {
	return c != nil && c.ProductID != nil && *c.ProductID != uuid.Nil
}
