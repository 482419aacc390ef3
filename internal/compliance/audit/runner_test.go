package audit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verdantry/canopy-backend/internal/compliance/audit"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func makeActions(n int, needsLink bool) []audit.Action {
	actions := make([]audit.Action, 0, n)
	for i := 0; i < n; i++ {
		p := product("Product " + uuid.NewString()[:8])
		var pid *uuid.UUID
		if !needsLink {
			pid = &p.ID
		}
		actions = append(actions, audit.Action{
			Product:     p,
			Certificate: certificate("coa.pdf", pid),
			NeedsLink:   needsLink,
		})
	}
	return actions
}

func okOutcome(fields int) *domain.ParseOutcome {
	out := &domain.ParseOutcome{Success: true}
	for i := 0; i < fields; i++ {
		out.FieldsUpdated = append(out.FieldsUpdated, "field")
	}
	return out
}

func TestRunner_ProcessesEveryAction(t *testing.T) {
	var parseCalls int64
	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			atomic.AddInt64(&parseCalls, 1)
			return okOutcome(2), nil
		},
	}

	for _, n := range []int{1, 3, 5, 12} {
		atomic.StoreInt64(&parseCalls, 0)
		actions := makeActions(n, false)

		runner := audit.NewRunner(ops, testLogger(t))
		results, err := runner.Run(context.Background(), actions, audit.RunnerOptions{})
		if err != nil {
			t.Fatalf("n=%d: Run: %v", n, err)
		}
		if got := atomic.LoadInt64(&parseCalls); got != int64(n) {
			t.Fatalf("n=%d: expected %d parse calls, got %d", n, n, got)
		}
		if len(results) != n {
			t.Fatalf("n=%d: expected %d results, got %d", n, n, len(results))
		}
		for _, a := range actions {
			r, ok := results[a.Product.ID]
			if !ok {
				t.Fatalf("n=%d: missing result for %s", n, a.Product.Name)
			}
			if !r.Success || r.Action != domain.AuditActionParsed || r.FieldsUpdated != 2 {
				t.Fatalf("n=%d: unexpected result %+v", n, r)
			}
		}
	}
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	const limit = 5
	var inFlight, peak int64

	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			cur := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if cur <= p || atomic.CompareAndSwapInt64(&peak, p, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			return okOutcome(1), nil
		},
	}

	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(context.Background(), makeActions(20, false), audit.RunnerOptions{Concurrency: limit})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	if got := atomic.LoadInt64(&peak); got > limit {
		t.Fatalf("expected at most %d actions in flight, observed %d", limit, got)
	}
}

func TestRunner_LinkPrecedesParsePerItem(t *testing.T) {
	var mu sync.Mutex
	linked := make(map[uuid.UUID]bool)

	ops := audit.RunnerOps{
		LinkCertificate: func(ctx context.Context, certID, productID uuid.UUID) error {
			mu.Lock()
			linked[productID] = true
			mu.Unlock()
			return nil
		},
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			mu.Lock()
			ok := linked[productID]
			mu.Unlock()
			if !ok {
				return nil, errors.New("parse reached before link")
			}
			return okOutcome(1), nil
		},
	}

	actions := makeActions(8, true)
	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(context.Background(), actions, audit.RunnerOptions{Concurrency: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, a := range actions {
		r := results[a.Product.ID]
		if !r.Success {
			t.Fatalf("parse ran before link for %s", a.Product.Name)
		}
		if r.Action != domain.AuditActionLinkedParsed {
			t.Fatalf("expected %q action, got %q", domain.AuditActionLinkedParsed, r.Action)
		}
	}
}

func TestRunner_SingleFailureDoesNotAbortSiblings(t *testing.T) {
	actions := makeActions(6, false)
	doomed := actions[2].Product.ID

	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			if productID == doomed {
				return nil, errors.New("extraction backend unavailable")
			}
			return okOutcome(3), nil
		},
	}

	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(context.Background(), actions, audit.RunnerOptions{Concurrency: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected all 6 results, got %d", len(results))
	}

	failed := results[doomed]
	if failed.Success || failed.Action != domain.AuditActionFailed || failed.FieldsUpdated != 0 {
		t.Fatalf("unexpected failed result: %+v", failed)
	}
	for _, a := range actions {
		if a.Product.ID == doomed {
			continue
		}
		if r := results[a.Product.ID]; !r.Success {
			t.Fatalf("sibling %s was aborted by an unrelated failure", a.Product.Name)
		}
	}
}

func TestRunner_UnsuccessfulOutcomeRecordsFailure(t *testing.T) {
	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			return &domain.ParseOutcome{Success: false, Err: "no recognizable fields"}, nil
		},
	}

	actions := makeActions(1, false)
	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(context.Background(), actions, audit.RunnerOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := results[actions[0].Product.ID]
	if r.Success || r.Action != domain.AuditActionFailed {
		t.Fatalf("expected failed result for unsuccessful outcome, got %+v", r)
	}
}

func TestRunner_ProgressFiresBeforeRemoteCalls(t *testing.T) {
	var mu sync.Mutex
	announced := make(map[uuid.UUID]bool)

	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			mu.Lock()
			ok := announced[productID]
			mu.Unlock()
			if !ok {
				return nil, errors.New("parse started before progress")
			}
			return okOutcome(1), nil
		},
	}

	actions := makeActions(4, false)
	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(context.Background(), actions, audit.RunnerOptions{
		Concurrency: 2,
		OnProgress: func(processed, total int, p *domain.Product) {
			if total != 4 {
				t.Errorf("expected total 4, got %d", total)
			}
			mu.Lock()
			announced[p.ID] = true
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, a := range actions {
		if !results[a.Product.ID].Success {
			t.Fatalf("progress did not precede parse for %s", a.Product.Name)
		}
	}
}

func TestRunner_ResultsArriveInCompletionOrder(t *testing.T) {
	var order []uuid.UUID
	var mu sync.Mutex

	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			return okOutcome(1), nil
		},
	}

	actions := makeActions(5, false)
	runner := audit.NewRunner(ops, testLogger(t))
	_, err := runner.Run(context.Background(), actions, audit.RunnerOptions{
		Concurrency: 1,
		OnResult: func(r domain.AuditResult) {
			mu.Lock()
			order = append(order, r.ProductID)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 result callbacks, got %d", len(order))
	}
}

func TestRunner_CancellationStopsFurtherClaims(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int64
	ops := audit.RunnerOps{
		ParseCertificate: func(ctx context.Context, certID, productID uuid.UUID) (*domain.ParseOutcome, error) {
			if atomic.AddInt64(&calls, 1) == 1 {
				cancel()
			}
			return okOutcome(1), nil
		},
	}

	actions := makeActions(10, false)
	runner := audit.NewRunner(ops, testLogger(t))
	results, err := runner.Run(ctx, actions, audit.RunnerOptions{Concurrency: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(results) >= 10 {
		t.Fatalf("expected cancellation to stop further claims, got %d results", len(results))
	}
}
