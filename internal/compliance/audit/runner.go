package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

const (
	// DefaultConcurrency bounds how many audit actions run at once.
	DefaultConcurrency = 5
	// DefaultCallTimeout bounds each remote operation (link or parse).
	DefaultCallTimeout = 90 * time.Second
)

// RunnerOps are the external operations the runner drives. Both must be
// safe for concurrent use.
type RunnerOps struct {
	LinkCertificate  func(ctx context.Context, certificateID, productID uuid.UUID) error
	ParseCertificate func(ctx context.Context, certificateID, productID uuid.UUID) (*domain.ParseOutcome, error)
}

// RunnerOptions tune a single Run. Zero values fall back to defaults;
// callbacks are optional.
type RunnerOptions struct {
	Concurrency int
	CallTimeout time.Duration

	// OnProgress fires before an action's remote calls begin, so
	// observers see which product is being worked on while it runs.
	OnProgress func(processed, total int, product *domain.Product)
	// OnResult fires after each action settles, in completion order.
	OnResult func(result domain.AuditResult)
}

type Runner struct {
	ops RunnerOps
	log *logger.Logger
}

func NewRunner(ops RunnerOps, baseLog *logger.Logger) *Runner {
	return &Runner{ops: ops, log: baseLog.With("component", "AuditRunner")}
}

// Run executes every action with a bounded worker pool. Each action is
// claimed exactly once. Failures are recorded as failed results rather
// than aborting sibling actions; a link that succeeds before its parse
// fails is left in place. Cancelling ctx stops claiming new actions and
// in-flight actions settle as failed results carrying the context
// error. The returned map is keyed by product id.
func (r *Runner) Run(ctx context.Context, actions []Action, opts RunnerOptions) (map[uuid.UUID]domain.AuditResult, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(actions) {
		concurrency = len(actions)
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	results := make(map[uuid.UUID]domain.AuditResult, len(actions))
	if len(actions) == 0 {
		return results, nil
	}

	var (
		mu        sync.Mutex
		processed int
	)
	total := len(actions)

	record := func(result domain.AuditResult) {
		mu.Lock()
		processed++
		results[result.ProductID] = result
		mu.Unlock()
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, action := range actions {
		if gctx.Err() != nil {
			break
		}
		action := action
		g.Go(func() error {
			if opts.OnProgress != nil {
				mu.Lock()
				done := processed
				mu.Unlock()
				opts.OnProgress(done, total, action.Product)
			}

			result, err := r.runOne(gctx, action, callTimeout)
			if err != nil {
				r.log.Warn("audit action failed",
					"product_id", action.Product.ID,
					"certificate_id", action.Certificate.ID,
					"error", err)
				record(domain.AuditResult{
					ProductID:   action.Product.ID,
					ProductName: action.Product.Name,
					Success:     false,
					Action:      domain.AuditActionFailed,
				})
				return nil
			}
			record(result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, action Action, callTimeout time.Duration) (domain.AuditResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuditResult{}, err
	}

	auditAction := domain.AuditActionParsed
	if action.NeedsLink {
		auditAction = domain.AuditActionLinkedParsed
		linkCtx, cancel := context.WithTimeout(ctx, callTimeout)
		err := r.ops.LinkCertificate(linkCtx, action.Certificate.ID, action.Product.ID)
		cancel()
		if err != nil {
			return domain.AuditResult{}, err
		}
	}

	parseCtx, cancel := context.WithTimeout(ctx, callTimeout)
	outcome, err := r.ops.ParseCertificate(parseCtx, action.Certificate.ID, action.Product.ID)
	cancel()
	if err != nil {
		return domain.AuditResult{}, err
	}
	if outcome == nil || !outcome.Success {
		msg := "parse produced no usable fields"
		if outcome != nil && outcome.Err != "" {
			msg = outcome.Err
		}
		return domain.AuditResult{}, errors.New(msg)
	}

	return domain.AuditResult{
		ProductID:     action.Product.ID,
		ProductName:   action.Product.Name,
		Success:       true,
		FieldsUpdated: len(outcome.FieldsUpdated),
		Action:        auditAction,
		Comparisons:   outcome.Comparisons,
	}, nil
}
