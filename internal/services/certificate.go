package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/gcp"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
)

// CertificateListFilter narrows List to linked or unlinked
// certificates. Empty means all.
type CertificateListFilter string

const (
	CertificateFilterAll      CertificateListFilter = ""
	CertificateFilterLinked   CertificateListFilter = "linked"
	CertificateFilterUnlinked CertificateListFilter = "unlinked"
)

type CertificateService interface {
	Upload(ctx context.Context, vendorID uuid.UUID, fileName string, file io.Reader) (*domain.Certificate, error)
	Get(ctx context.Context, vendorID, certID uuid.UUID) (*domain.Certificate, error)
	List(ctx context.Context, vendorID uuid.UUID, filter CertificateListFilter) ([]*domain.Certificate, error)
	LinkToProduct(ctx context.Context, certID, productID, vendorID uuid.UUID) error
	Unlink(ctx context.Context, certID, vendorID uuid.UUID) error
	Delete(ctx context.Context, vendorID, certID uuid.UUID) error
}

type certificateService struct {
	db       *gorm.DB
	log      *logger.Logger
	certRepo repos.CertificateRepo
	prodRepo repos.ProductRepo
	bucket   gcp.BucketService
	notifier Notifier
}

func NewCertificateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	certRepo repos.CertificateRepo,
	prodRepo repos.ProductRepo,
	bucket gcp.BucketService,
	notifier Notifier,
) CertificateService {
	return &certificateService{
		db:       db,
		log:      baseLog.With("service", "CertificateService"),
		certRepo: certRepo,
		prodRepo: prodRepo,
		bucket:   bucket,
		notifier: notifier,
	}
}

var allowedCertificateExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func (cs *certificateService) Upload(ctx context.Context, vendorID uuid.UUID, fileName string, file io.Reader) (*domain.Certificate, error) {
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." {
		return nil, fmt.Errorf("file name required")
	}
	ext := strings.ToLower(path.Ext(fileName))
	if !allowedCertificateExtensions[ext] {
		return nil, fmt.Errorf("unsupported certificate file type %q", ext)
	}

	storageKey := fmt.Sprintf("coas/%s/%s/%s", vendorID, uuid.NewString(), fileName)
	if err := cs.bucket.UploadFile(ctx, storageKey, file); err != nil {
		return nil, fmt.Errorf("failed to upload certificate: %w", err)
	}

	certs, err := cs.certRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.Certificate{{
		VendorID:   vendorID,
		FileName:   fileName,
		FileURL:    cs.bucket.GetPublicURL(storageKey),
		StorageKey: storageKey,
	}})
	if err != nil {
		// Keep storage consistent with the database.
		if delErr := cs.bucket.DeleteFile(ctx, storageKey); delErr != nil {
			cs.log.Warn("failed to clean up orphaned upload", "key", storageKey, "error", delErr)
		}
		return nil, fmt.Errorf("failed to persist certificate: %w", err)
	}
	cert := certs[0]

	cs.notifier.Publish(ctx, realtime.SSEMessage{
		Channel: realtime.VendorAuditChannel(vendorID.String()),
		Event:   realtime.SSEEventCertificateUploaded,
		Data:    cert,
	})
	return cert, nil
}

func (cs *certificateService) Get(ctx context.Context, vendorID, certID uuid.UUID) (*domain.Certificate, error) {
	cert, err := cs.certRepo.GetByID(dbctx.Context{Ctx: ctx}, certID)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	if cert.VendorID != vendorID {
		return nil, fmt.Errorf("certificate does not belong to vendor")
	}
	return cert, nil
}

func (cs *certificateService) List(ctx context.Context, vendorID uuid.UUID, filter CertificateListFilter) ([]*domain.Certificate, error) {
	dbc := dbctx.Context{Ctx: ctx}
	switch filter {
	case CertificateFilterUnlinked:
		return cs.certRepo.ListUnlinkedByVendorID(dbc, vendorID)
	case CertificateFilterLinked:
		certs, err := cs.certRepo.ListByVendorID(dbc, vendorID)
		if err != nil {
			return nil, err
		}
		linked := certs[:0]
		for _, c := range certs {
			if c.Linked() {
				linked = append(linked, c)
			}
		}
		return linked, nil
	default:
		return cs.certRepo.ListByVendorID(dbc, vendorID)
	}
}

// LinkToProduct attaches a certificate to a product after checking both
// belong to the vendor.
func (cs *certificateService) LinkToProduct(ctx context.Context, certID, productID, vendorID uuid.UUID) error {
	cert, err := cs.Get(ctx, vendorID, certID)
	if err != nil {
		return err
	}
	product, err := cs.prodRepo.GetByID(dbctx.Context{Ctx: ctx}, productID)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if product.VendorID != vendorID {
		return fmt.Errorf("product does not belong to vendor")
	}

	if err := cs.certRepo.SetProductID(dbctx.Context{Ctx: ctx}, cert.ID, &product.ID); err != nil {
		return fmt.Errorf("failed to link certificate: %w", err)
	}
	cs.log.Info("certificate linked", "certificate_id", cert.ID, "product_id", product.ID)

	cs.notifier.Publish(ctx, realtime.SSEMessage{
		Channel: realtime.VendorAuditChannel(vendorID.String()),
		Event:   realtime.SSEEventCertificateLinked,
		Data: map[string]any{
			"certificate_id": cert.ID,
			"product_id":     product.ID,
		},
	})
	return nil
}

func (cs *certificateService) Unlink(ctx context.Context, certID, vendorID uuid.UUID) error {
	cert, err := cs.Get(ctx, vendorID, certID)
	if err != nil {
		return err
	}
	if err := cs.certRepo.SetProductID(dbctx.Context{Ctx: ctx}, cert.ID, nil); err != nil {
		return fmt.Errorf("failed to unlink certificate: %w", err)
	}
	return nil
}

// Delete soft-deletes the database row; the stored object is kept for
// compliance retention.
func (cs *certificateService) Delete(ctx context.Context, vendorID, certID uuid.UUID) error {
	cert, err := cs.Get(ctx, vendorID, certID)
	if err != nil {
		return err
	}
	if err := cs.certRepo.SoftDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{cert.ID}); err != nil {
		return fmt.Errorf("failed to delete certificate: %w", err)
	}
	return nil
}
