package compliance_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/data/repos/compliance"
	"github.com/verdantry/canopy-backend/internal/data/repos/testutil"
)

func TestCertificateRepo_LinkAndUnlink(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.DBC(tx)
	log := testutil.Logger(t)

	vendor := testutil.SeedVendor(t, tx, "Canopy Labs")
	product := testutil.SeedProduct(t, tx, vendor.ID, "Blue Dream 1g")
	cert := testutil.SeedCertificate(t, tx, vendor.ID, "blue-dream-1g.pdf", nil)

	repo := compliance.NewCertificateRepo(db, log)

	unlinked, err := repo.ListUnlinkedByVendorID(dbc, vendor.ID)
	if err != nil {
		t.Fatalf("ListUnlinkedByVendorID: %v", err)
	}
	if len(unlinked) != 1 || unlinked[0].ID != cert.ID {
		t.Fatalf("expected only the seeded unlinked certificate, got %d rows", len(unlinked))
	}

	if err := repo.SetProductID(dbc, cert.ID, &product.ID); err != nil {
		t.Fatalf("SetProductID(link): %v", err)
	}

	got, err := repo.GetByID(dbc, cert.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProductID == nil || *got.ProductID != product.ID {
		t.Fatalf("expected certificate linked to %s, got %v", product.ID, got.ProductID)
	}
	if !got.Linked() {
		t.Fatalf("expected Linked() to report true")
	}

	unlinked, err = repo.ListUnlinkedByVendorID(dbc, vendor.ID)
	if err != nil {
		t.Fatalf("ListUnlinkedByVendorID after link: %v", err)
	}
	if len(unlinked) != 0 {
		t.Fatalf("expected no unlinked certificates after link, got %d", len(unlinked))
	}

	byProduct, err := repo.ListByProductIDs(dbc, []uuid.UUID{product.ID})
	if err != nil {
		t.Fatalf("ListByProductIDs: %v", err)
	}
	if len(byProduct) != 1 || byProduct[0].ID != cert.ID {
		t.Fatalf("expected one certificate for product, got %d", len(byProduct))
	}

	if err := repo.SetProductID(dbc, cert.ID, nil); err != nil {
		t.Fatalf("SetProductID(unlink): %v", err)
	}
	got, err = repo.GetByID(dbc, cert.ID)
	if err != nil {
		t.Fatalf("GetByID after unlink: %v", err)
	}
	if got.ProductID != nil {
		t.Fatalf("expected product_id cleared after unlink, got %v", got.ProductID)
	}
}

func TestCertificateRepo_SoftDeleteHidesRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.DBC(tx)
	log := testutil.Logger(t)

	vendor := testutil.SeedVendor(t, tx, "Canopy Labs")
	cert := testutil.SeedCertificate(t, tx, vendor.ID, "og-kush.pdf", nil)

	repo := compliance.NewCertificateRepo(db, log)

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{cert.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}

	rows, err := repo.ListByVendorID(dbc, vendor.ID)
	if err != nil {
		t.Fatalf("ListByVendorID: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected soft-deleted certificate to be hidden, got %d rows", len(rows))
	}

	var count int64
	if err := tx.Table("certificate").
		Where("id = ? AND deleted_at IS NOT NULL", cert.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count raw row: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the raw row to survive with deleted_at set")
	}
}
