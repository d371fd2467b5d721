package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bigmouth/restaurant-notifier/internal/events"
	"github.com/bigmouth/restaurant-notifier/internal/metrics"
)

// ErrInProgress signals that another claimant currently owns the key. The
// caller's delivery mechanism is expected to redeliver later; the engine
// never busy-waits on a contended key.
var ErrInProgress = errors.New("operation already in progress")

// Work performs the externally visible side effects for one event and
// returns the result cached for duplicate deliveries.
type Work func(ctx context.Context, ev events.OrderEvent) (string, error)

// Engine wraps a side-effecting function in the claim/execute/commit/release
// protocol so the work runs at most once per distinct event, no matter how
// many times the event is delivered.
type Engine struct {
	ledger        Ledger
	inProgressTTL time.Duration
	completedTTL  time.Duration
	recorder      *metrics.Recorder
}

// NewEngine returns an Engine running against the given ledger.
// inProgressTTL bounds how long a crashed claimant blocks its key;
// completedTTL is the retention window for cached results and must exceed
// the channel's worst-case redelivery latency.
func NewEngine(ledger Ledger, inProgressTTL, completedTTL time.Duration, recorder *metrics.Recorder) *Engine {
	return &Engine{
		ledger:        ledger,
		inProgressTTL: inProgressTTL,
		completedTTL:  completedTTL,
		recorder:      recorder,
	}
}

// Run executes work for the event exactly once per idempotency key.
// Duplicate deliveries get the cached result without re-running side
// effects. A contended key surfaces ErrInProgress. A work failure releases
// the claim so the next delivery can retry immediately.
func (e *Engine) Run(ctx context.Context, operation string, ev events.OrderEvent, work Work) (string, error) {
	key, err := DeriveKey(operation, ev)
	if err != nil {
		return "", err
	}

	claim, err := e.ledger.TryClaim(ctx, key, e.inProgressTTL)
	if err != nil {
		return "", fmt.Errorf("claim %s: %w", key, err)
	}

	switch claim.Outcome {
	case AlreadyCompleted:
		log.Printf("[engine] duplicate delivery for order=%s, returning cached result", ev.OrderID)
		e.recorder.Count(ctx, metrics.MetricDuplicateSuppressed)
		return claim.Result, nil
	case AlreadyInProgress:
		return "", fmt.Errorf("%w: key=%s", ErrInProgress, key)
	}

	result, err := work(ctx, ev)
	if err != nil {
		e.recorder.Count(ctx, metrics.MetricWorkFailed)
		if relErr := e.ledger.Release(ctx, key, claim.Token); relErr != nil {
			// The work error is the one the caller must see. The orphaned
			// record expires on the in-progress TTL.
			log.Printf("[engine] release failed for key=%s: %v", key, relErr)
		}
		return "", fmt.Errorf("work for order=%s: %w", ev.OrderID, err)
	}

	if err := e.ledger.Commit(ctx, key, claim.Token, result, e.completedTTL); err != nil {
		// Side effects ran but the result was not recorded; a redelivery may
		// re-execute once the in-progress record decays. Propagate so the
		// delivery is retried rather than silently dropping the commit.
		return "", fmt.Errorf("commit %s: %w", key, err)
	}

	e.recorder.Count(ctx, metrics.MetricNotificationProcessed)
	return result, nil
}
