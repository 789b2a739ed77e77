package core

import (
	"context"

	"partpulse/pkg/domain"
)

// Ledger is the read side of the append-only approval log. Entries are
// written only by Service.Decide and Service.Execute, in the same
// transaction as the status change they record; the approval_transition
// rule rejects any other write.
type Ledger struct {
	store domain.PersistentStore
}

// NewLedger wraps store.
func NewLedger(store domain.PersistentStore) *Ledger {
	return &Ledger{store: store}
}

// ListFor returns the entries for requestID ordered by decision time then
// sequence. Each call returns a fresh slice.
func (l *Ledger) ListFor(ctx context.Context, requestID string) ([]Approval, error) {
	var out []Approval
	err := l.store.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindRequest(requestID); !ok {
			return domain.NotFoundError{Entity: EntityRequest, ID: requestID}
		}
		out = v.ListApprovals(requestID)
		return nil
	})
	return out, err
}
