package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditRunStatusRunning  = "running"
	AuditRunStatusComplete = "complete"
)

// AuditRun is the persisted record of one bulk compliance audit. The
// Results snapshot is written once when the run completes so clients
// that reconnect after the SSE stream ended can recover the outcome.
type AuditRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	TotalProducts int            `gorm:"column:total_products;not null" json:"total_products"`
	Processed     int            `gorm:"column:processed;not null" json:"processed"`
	Succeeded     int            `gorm:"column:succeeded;not null" json:"succeeded"`
	Failed        int            `gorm:"column:failed;not null" json:"failed"`
	FieldsUpdated int            `gorm:"column:fields_updated;not null" json:"fields_updated"`
	Results       datatypes.JSON `gorm:"column:results;type:jsonb" json:"results,omitempty"`
	StartedAt     time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt    *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AuditRun) TableName() string { return "audit_run" }

// Field comparison statuses reported by the parse step.
const (
	FieldStatusFilled   = "filled"   // empty product field received the COA value
	FieldStatusMatched  = "matched"  // existing product value agrees with the COA
	FieldStatusConflict = "conflict" // existing product value disagrees; kept as-is
	FieldStatusSkipped  = "skipped"  // COA did not yield a value for this field
)

// FieldComparison is one field-level outcome of a parse. Ephemeral.
type FieldComparison struct {
	Label        string `json:"label"`
	Status       string `json:"status"`
	COAValue     string `json:"coa_value,omitempty"`
	ProductValue string `json:"product_value,omitempty"`
}

// ParseOutcome is the result of parsing one certificate against one
// product. Ephemeral; surfaced per item, never thrown across a batch.
type ParseOutcome struct {
	Success       bool              `json:"success"`
	FieldsUpdated []string          `json:"fields_updated,omitempty"`
	Comparisons   []FieldComparison `json:"comparisons,omitempty"`
	Err           string            `json:"error,omitempty"`
}

// Audit action labels shown per processed product.
const (
	AuditActionParsed       = "parsed"
	AuditActionLinkedParsed = "linked & parsed"
	AuditActionFailed       = "failed"
)

// AuditResult is the per-product outcome of a bulk audit run.
type AuditResult struct {
	ProductID     uuid.UUID         `json:"product_id"`
	ProductName   string            `json:"product_name"`
	Success       bool              `json:"success"`
	FieldsUpdated int               `json:"fields_updated"`
	Action        string            `json:"action"`
	Comparisons   []FieldComparison `json:"comparisons,omitempty"`
}
