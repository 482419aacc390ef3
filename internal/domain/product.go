package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is the fill target for certificate parsing: CustomFields is a
// free-form key/value map; the parse step writes only keys that are empty.
type Product struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Name         string            `gorm:"column:name;not null;index" json:"name"`
	CategoryID   *uuid.UUID        `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	CustomFields datatypes.JSONMap `gorm:"column:custom_fields;type:jsonb" json:"custom_fields,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }

// CustomFieldValue returns the trimmed string form of a custom field,
// or "" when the key is absent or holds a non-scalar.
func (p *Product) CustomFieldValue(key string) string {
	if p == nil || p.CustomFields == nil {
		return ""
	}
	v, ok := p.CustomFields[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
