package compliance_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/verdantry/canopy-backend/internal/data/repos/compliance"
	"github.com/verdantry/canopy-backend/internal/data/repos/testutil"
)

func TestProductRepo_ListOrdersByName(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.DBC(tx)
	log := testutil.Logger(t)

	vendor := testutil.SeedVendor(t, tx, "Canopy Labs")
	testutil.SeedProduct(t, tx, vendor.ID, "Sour Diesel 3.5g")
	testutil.SeedProduct(t, tx, vendor.ID, "Blue Dream 1g")
	testutil.SeedProduct(t, tx, vendor.ID, "OG Kush 1g")

	repo := compliance.NewProductRepo(db, log)

	rows, err := repo.ListByVendorID(dbc, vendor.ID)
	if err != nil {
		t.Fatalf("ListByVendorID: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 products, got %d", len(rows))
	}
	want := []string{"Blue Dream 1g", "OG Kush 1g", "Sour Diesel 3.5g"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, rows[i].Name)
		}
	}
}

func TestProductRepo_UpdateFieldsMergesCustomFields(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.DBC(tx)
	log := testutil.Logger(t)

	vendor := testutil.SeedVendor(t, tx, "Canopy Labs")
	product := testutil.SeedProduct(t, tx, vendor.ID, "Blue Dream 1g")

	repo := compliance.NewProductRepo(db, log)

	fields := datatypes.JSONMap{"thc_percent": "24.1", "pesticides": "pass"}
	if err := repo.UpdateFields(dbc, product.ID, map[string]interface{}{
		"custom_fields": fields,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err := repo.GetByID(dbc, product.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CustomFieldValue("thc_percent") != "24.1" {
		t.Fatalf("expected thc_percent persisted, got %q", got.CustomFieldValue("thc_percent"))
	}
	if got.CustomFieldValue("pesticides") != "pass" {
		t.Fatalf("expected pesticides persisted, got %q", got.CustomFieldValue("pesticides"))
	}
}

func TestProductRepo_GetByIDsEmptyInput(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.DBC(tx)
	log := testutil.Logger(t)

	repo := compliance.NewProductRepo(db, log)

	rows, err := repo.GetByIDs(dbc, []uuid.UUID{})
	if err != nil {
		t.Fatalf("GetByIDs with empty input: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows for empty input, got %d", len(rows))
	}
}
