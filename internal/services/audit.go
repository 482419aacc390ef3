package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/compliance/audit"
	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
)

// PlanEntry is the read-only audit preview for one product.
type PlanEntry struct {
	ProductID           uuid.UUID  `json:"product_id"`
	ProductName         string     `json:"product_name"`
	Status              string     `json:"status"`
	LinkedCertificates  int        `json:"linked_certificates"`
	CandidateID         *uuid.UUID `json:"candidate_id,omitempty"`
	CandidateFileName   string     `json:"candidate_file_name,omitempty"`
	CandidateMatchScore int        `json:"candidate_match_score,omitempty"`
	ParseActionable     bool       `json:"parse_actionable"`
}

type AuditService interface {
	Plan(ctx context.Context, vendorID uuid.UUID) ([]PlanEntry, error)
	Start(ctx context.Context, vendorID uuid.UUID) (*domain.AuditRun, error)
	Get(ctx context.Context, vendorID, runID uuid.UUID) (*domain.AuditRun, error)
	List(ctx context.Context, vendorID uuid.UUID) ([]*domain.AuditRun, error)
}

type auditService struct {
	db           *gorm.DB
	log          *logger.Logger
	productRepo  repos.ProductRepo
	certRepo     repos.CertificateRepo
	auditRunRepo repos.AuditRunRepo
	certService  CertificateService
	parseService ParseService
	notifier     Notifier

	concurrency int
	callTimeout time.Duration
}

func NewAuditService(
	db *gorm.DB,
	baseLog *logger.Logger,
	productRepo repos.ProductRepo,
	certRepo repos.CertificateRepo,
	auditRunRepo repos.AuditRunRepo,
	certService CertificateService,
	parseService ParseService,
	notifier Notifier,
	concurrency int,
	callTimeout time.Duration,
) AuditService {
	return &auditService{
		db:           db,
		log:          baseLog.With("service", "AuditService"),
		productRepo:  productRepo,
		certRepo:     certRepo,
		auditRunRepo: auditRunRepo,
		certService:  certService,
		parseService: parseService,
		notifier:     notifier,
		concurrency:  concurrency,
		callTimeout:  callTimeout,
	}
}

func (as *auditService) buildPlans(ctx context.Context, vendorID uuid.UUID) ([]audit.ProductPlan, error) {
	dbc := dbctx.Context{Ctx: ctx}
	products, err := as.productRepo.ListByVendorID(dbc, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	certs, err := as.certRepo.ListByVendorID(dbc, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return audit.BuildPlan(products, certs), nil
}

func (as *auditService) Plan(ctx context.Context, vendorID uuid.UUID) ([]PlanEntry, error) {
	plans, err := as.buildPlans(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	entries := make([]PlanEntry, 0, len(plans))
	for _, p := range plans {
		entry := PlanEntry{
			ProductID:          p.Product.ID,
			ProductName:        p.Product.Name,
			Status:             string(p.Status),
			LinkedCertificates: len(p.LinkedCertificates),
			ParseActionable:    p.ParseActionable,
		}
		if p.Candidate != nil {
			id := p.Candidate.Certificate.ID
			entry.CandidateID = &id
			entry.CandidateFileName = p.Candidate.Certificate.FileName
			entry.CandidateMatchScore = p.Candidate.Score
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Start creates the run record and executes it in the background. The
// caller gets the running record back immediately; progress streams
// over SSE and the final snapshot lands on the row.
func (as *auditService) Start(ctx context.Context, vendorID uuid.UUID) (*domain.AuditRun, error) {
	plans, err := as.buildPlans(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	actions := audit.Actions(plans)

	runs, err := as.auditRunRepo.Create(dbctx.Context{Ctx: ctx}, []*domain.AuditRun{{
		VendorID:      vendorID,
		Status:        domain.AuditRunStatusRunning,
		TotalProducts: len(actions),
		StartedAt:     time.Now().UTC(),
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to create audit run: %w", err)
	}
	run := runs[0]

	channel := realtime.VendorAuditChannel(vendorID.String())
	as.notifier.Publish(ctx, realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventAuditStarted,
		Data: map[string]any{
			"run_id": run.ID,
			"total":  len(actions),
		},
	})

	go as.execute(run, vendorID, actions, channel)

	return run, nil
}

// execute owns its own context: the audit outlives the HTTP request
// that started it.
func (as *auditService) execute(run *domain.AuditRun, vendorID uuid.UUID, actions []audit.Action, channel string) {
	ctx := context.Background()
	log := as.log.With("run_id", run.ID, "vendor_id", vendorID)

	ops := audit.RunnerOps{
		LinkCertificate: func(ctx context.Context, certID, productID uuid.UUID) error {
			return as.certService.LinkToProduct(ctx, certID, productID, vendorID)
		},
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			return as.parseService.ParseAndFill(ctx, certID, productID, vendorID)
		},
	}

	runner := audit.NewRunner(ops, as.log)
	results, runErr := runner.Run(ctx, actions, audit.RunnerOptions{
		Concurrency: as.concurrency,
		CallTimeout: as.callTimeout,
		OnProgress: func(processed, total int, product *domain.Product) {
			as.notifier.Publish(ctx, realtime.SSEMessage{
				Channel: channel,
				Event:   realtime.SSEEventAuditProgress,
				Data: map[string]any{
					"run_id":       run.ID,
					"processed":    processed,
					"total":        total,
					"product_id":   product.ID,
					"product_name": product.Name,
				},
			})
		},
		OnResult: func(result domain.AuditResult) {
			as.notifier.Publish(ctx, realtime.SSEMessage{
				Channel: channel,
				Event:   realtime.SSEEventAuditResult,
				Data: map[string]any{
					"run_id": run.ID,
					"result": result,
				},
			})
		},
	})
	if runErr != nil {
		log.Error("audit run aborted", "error", runErr)
	}

	ordered := make([]domain.AuditResult, 0, len(results))
	succeeded, failed, fieldsUpdated := 0, 0, 0
	for _, action := range actions {
		result, ok := results[action.Product.ID]
		if !ok {
			continue
		}
		ordered = append(ordered, result)
		if result.Success {
			succeeded++
			fieldsUpdated += result.FieldsUpdated
		} else {
			failed++
		}
	}

	snapshot, err := json.Marshal(ordered)
	if err != nil {
		log.Error("failed to marshal audit results", "error", err)
		snapshot = []byte("[]")
	}
	finished := time.Now().UTC()
	if err := as.auditRunRepo.UpdateFields(dbctx.Context{Ctx: ctx}, run.ID, map[string]interface{}{
		"status":         domain.AuditRunStatusComplete,
		"processed":      len(ordered),
		"succeeded":      succeeded,
		"failed":         failed,
		"fields_updated": fieldsUpdated,
		"results":        datatypes.JSON(snapshot),
		"finished_at":    &finished,
	}); err != nil {
		log.Error("failed to persist audit run snapshot", "error", err)
	}

	as.notifier.Publish(ctx, realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventAuditCompleted,
		Data: map[string]any{
			"run_id":         run.ID,
			"processed":      len(ordered),
			"succeeded":      succeeded,
			"failed":         failed,
			"fields_updated": fieldsUpdated,
		},
	})
	log.Info("audit run complete",
		"processed", len(ordered), "succeeded", succeeded, "failed", failed, "fields", fieldsUpdated)
}

func (as *auditService) Get(ctx context.Context, vendorID, runID uuid.UUID) (*domain.AuditRun, error) {
	run, err := as.auditRunRepo.GetByID(dbctx.Context{Ctx: ctx}, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit run: %w", err)
	}
	if run.VendorID != vendorID {
		return nil, fmt.Errorf("audit run does not belong to vendor")
	}
	return run, nil
}

func (as *auditService) List(ctx context.Context, vendorID uuid.UUID) ([]*domain.AuditRun, error) {
	return as.auditRunRepo.ListByVendorID(dbctx.Context{Ctx: ctx}, vendorID)
}
