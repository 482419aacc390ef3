package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/compliance/audit"
	"github.com/verdantry/canopy-backend/internal/compliance/extract"
	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/gcp"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
)

// ParseService reads a stored certificate document and fills the linked
// product's custom fields with the values the lab reported.
type ParseService interface {
	ParseAndFill(ctx context.Context, certID, productID, vendorID uuid.UUID) (*domain.ParseOutcome, error)
}

type parseService struct {
	db       *gorm.DB
	log      *logger.Logger
	certRepo repos.CertificateRepo
	prodRepo repos.ProductRepo
	bucket   gcp.BucketService
	document gcp.Document
	vision   gcp.Vision
	rules    extract.RuleSet
	notifier Notifier

	docAIProjectID   string
	docAILocation    string
	docAIProcessorID string
}

func NewParseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	certRepo repos.CertificateRepo,
	prodRepo repos.ProductRepo,
	bucket gcp.BucketService,
	document gcp.Document,
	vision gcp.Vision,
	rules extract.RuleSet,
	notifier Notifier,
	docAIProjectID, docAILocation, docAIProcessorID string,
) ParseService {
	return &parseService{
		db:               db,
		log:              baseLog.With("service", "ParseService"),
		certRepo:         certRepo,
		prodRepo:         prodRepo,
		bucket:           bucket,
		document:         document,
		vision:           vision,
		rules:            rules,
		notifier:         notifier,
		docAIProjectID:   docAIProjectID,
		docAILocation:    docAILocation,
		docAIProcessorID: docAIProcessorID,
	}
}

func (ps *parseService) ParseAndFill(ctx context.Context, certID, productID, vendorID uuid.UUID) (*domain.ParseOutcome, error) {
	dbc := dbctx.Context{Ctx: ctx}

	cert, err := ps.certRepo.GetByID(dbc, certID)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	if cert.VendorID != vendorID {
		return nil, fmt.Errorf("certificate does not belong to vendor")
	}
	product, err := ps.prodRepo.GetByID(dbc, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.VendorID != vendorID {
		return nil, fmt.Errorf("product does not belong to vendor")
	}

	data, err := ps.downloadCertificate(ctx, cert)
	if err != nil {
		return nil, err
	}

	coaFields, err := ps.extractFields(ctx, cert, data)
	if err != nil {
		return nil, err
	}
	if len(coaFields) == 0 {
		return &domain.ParseOutcome{
			Success: false,
			Err:     "no recognizable fields found on certificate",
		}, nil
	}

	if product.CustomFields == nil {
		product.CustomFields = datatypes.JSONMap{}
	}
	existing := make(map[string]string, len(product.CustomFields))
	for _, rule := range ps.rules.Rules {
		existing[rule.Key] = product.CustomFieldValue(rule.Key)
	}
	filled := extract.Fill(ps.rules, existing, coaFields)
	for k, v := range filled.Updates {
		product.CustomFields[k] = v
	}
	outcome := &domain.ParseOutcome{
		Success:       true,
		FieldsUpdated: filled.FieldsUpdated,
		Comparisons:   filled.Comparisons,
	}

	now := time.Now().UTC()
	parsed := datatypes.JSONMap{}
	for k, v := range coaFields {
		parsed[k] = v
	}
	txErr := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if len(outcome.FieldsUpdated) > 0 {
			if err := ps.prodRepo.UpdateFields(txc, product.ID, map[string]interface{}{
				"custom_fields": product.CustomFields,
			}); err != nil {
				return fmt.Errorf("failed to update product fields: %w", err)
			}
		}
		if err := ps.certRepo.UpdateFields(txc, cert.ID, map[string]interface{}{
			"parsed_fields": parsed,
			"parsed_at":     &now,
		}); err != nil {
			return fmt.Errorf("failed to record parsed fields: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	ps.notifier.Publish(ctx, realtime.SSEMessage{
		Channel: realtime.VendorAuditChannel(vendorID.String()),
		Event:   realtime.SSEEventCertificateParsed,
		Data: map[string]any{
			"certificate_id": cert.ID,
			"product_id":     product.ID,
			"fields_updated": outcome.FieldsUpdated,
		},
	})
	return outcome, nil
}

// downloadCertificate fetches the stored document, preferring the
// storage key and falling back to the object path of the public URL for
// rows imported before storage keys were recorded.
func (ps *parseService) downloadCertificate(ctx context.Context, cert *domain.Certificate) ([]byte, error) {
	key := strings.TrimSpace(cert.StorageKey)
	if key == "" {
		u, err := url.Parse(cert.FileURL)
		if err != nil || u.Path == "" {
			return nil, fmt.Errorf("certificate %s has no usable storage location", cert.ID)
		}
		key = strings.TrimPrefix(u.Path, "/")
		if bucket := strings.TrimSpace(os.Getenv("COA_GCS_BUCKET_NAME")); bucket != "" {
			key = strings.TrimPrefix(key, bucket+"/")
		}
	}
	data, err := ps.bucket.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download certificate %s: %w", cert.ID, err)
	}
	return data, nil
}

func (ps *parseService) extractFields(ctx context.Context, cert *domain.Certificate, data []byte) (map[string]string, error) {
	if audit.IsPDF(cert) {
		res, err := ps.document.ProcessBytes(ctx, gcp.DocAIProcessBytesRequest{
			ProjectID:   ps.docAIProjectID,
			Location:    ps.docAILocation,
			ProcessorID: ps.docAIProcessorID,
			MimeType:    "application/pdf",
			Data:        data,
		})
		if err != nil {
			return nil, fmt.Errorf("document extraction failed: %w", err)
		}
		formFields := make([]extract.FormField, 0, len(res.FormFields))
		for _, ff := range res.FormFields {
			formFields = append(formFields, extract.FormField{Name: ff.Name, Value: ff.Value})
		}
		fields := extract.FromFormFields(ps.rules, formFields)
		if len(fields) == 0 && res.PrimaryText != "" {
			fields = extract.FromText(ps.rules, res.PrimaryText)
		}
		return fields, nil
	}

	res, err := ps.vision.OCRImageBytes(ctx, data, mimeTypeForFileName(cert.FileName))
	if err != nil {
		return nil, fmt.Errorf("image OCR failed: %w", err)
	}
	return extract.FromText(ps.rules, res.PrimaryText), nil
}

func mimeTypeForFileName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name[strings.LastIndex(name, ".")+1:])) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
