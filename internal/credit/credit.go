package credit

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("credit",
	fx.Provide(NewService),
)

var ErrExceeded = errors.New("credit_exceeded")

// State is the per-currency credit position of a customer. Read-only from
// the document side; the pricing engine consults it, never mutates it.
type State struct {
	Limit   decimal.Decimal
	Used    decimal.Decimal
	Enabled bool
}

// Available returns limit minus used.
func (s State) Available() decimal.Decimal {
	return s.Limit.Sub(s.Used)
}

// Snapshot is the full credit position fetched for one customer.
type Snapshot struct {
	Enabled    bool
	ByCurrency map[pricing.Currency]State
}

// Result reports the outcome of a credit check. Callers surface Available
// and Requested on failure so the user sees both amounts.
type Result struct {
	OK        bool
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Evaluate checks a prospective document total against the customer's
// credit state. Only credit payment terms with the credit flag enabled are
// enforced; cash terms always pass regardless of the state.
func Evaluate(total decimal.Decimal, state State, creditTerm bool) Result {
	if !creditTerm || !state.Enabled {
		return Result{OK: true, Available: state.Available(), Requested: total}
	}
	available := state.Available()
	if total.GreaterThan(available) {
		return Result{OK: false, Available: available, Requested: total}
	}
	return Result{OK: true, Available: available, Requested: total}
}

// SnapshotStore fetches the latest credit snapshot for a customer.
type SnapshotStore interface {
	CreditSnapshot(ctx context.Context, customerID snowflake.ID) (Snapshot, error)
}

type Service struct {
	store SnapshotStore
	log   *zap.Logger
}

type Params struct {
	fx.In

	Store SnapshotStore
	Log   *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("credit.service"),
	}
}

// Check re-reads the customer's credit snapshot and evaluates the total
// against it. The fresh read happens at submission time so a limit lowered
// after page load still blocks the document.
func (s *Service) Check(ctx context.Context, customerID snowflake.ID, currency pricing.Currency, total decimal.Decimal, creditTerm bool) (Result, error) {
	snapshot, err := s.store.CreditSnapshot(ctx, customerID)
	if err != nil {
		return Result{}, err
	}

	state := snapshot.ByCurrency[currency]
	state.Enabled = state.Enabled && snapshot.Enabled
	result := Evaluate(total, state, creditTerm)
	if !result.OK {
		s.log.Info("credit check failed",
			zap.String("customer_id", customerID.String()),
			zap.String("currency", string(currency)),
			zap.String("requested", result.Requested.String()),
			zap.String("available", result.Available.String()),
		)
	}
	return result, nil
}
