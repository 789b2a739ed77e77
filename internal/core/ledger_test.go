package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"partpulse/internal/core"
	"partpulse/pkg/domain"
)

// appendRaw writes a ledger entry straight through the store, optionally
// together with a status change, bypassing Service.Decide.
func appendRaw(t *testing.T, svc *core.Service, req domain.Request, entry domain.Approval, moveTo domain.RequestStatus) error {
	t.Helper()
	_, err := svc.Store().RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if moveTo != "" {
			if _, err := tx.UpdateRequest(req.ID, req.Version, func(r *domain.Request) error {
				r.Status = moveTo
				return nil
			}); err != nil {
				return err
			}
		}
		_, err := tx.AppendApproval(entry)
		return err
	})
	return err
}

func currentStatus(t *testing.T, svc *core.Service, id string) domain.RequestStatus {
	t.Helper()
	req, err := svc.GetRequest(context.Background(), id)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	return req.Status
}

func TestLedgerSingleDecisionPerLevel(t *testing.T) {
	svc, _ := newTestService(t)
	req := submittedRequest(t, svc)
	mustDecide(t, svc, req.ID, domain.RoleBuildingTech, domain.DecisionApproved, "")

	err := appendRaw(t, svc, req, domain.Approval{
		RequestID:  req.ID,
		Level:      domain.RoleBuildingTech,
		Decision:   domain.DecisionApproved,
		FromStatus: domain.RequestStatusSubmitted,
		ToStatus:   domain.RequestStatusBuildingApproved,
	}, "")
	if !errors.Is(err, domain.ErrDuplicateApproval) {
		t.Fatalf("expected DuplicateApproval, got %v", err)
	}
	entries, err := svc.ApprovalsFor(context.Background(), req.ID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected a single ledger entry, got %d (%v)", len(entries), err)
	}
}

func TestLedgerEntryWithoutStatusChangeIsRefused(t *testing.T) {
	svc, _ := newTestService(t)
	req := submittedRequest(t, svc)

	err := appendRaw(t, svc, req, domain.Approval{
		RequestID:  req.ID,
		Level:      domain.RoleBuildingTech,
		Approver:   "tech",
		Decision:   domain.DecisionRejected,
		Comments:   "no",
		FromStatus: domain.RequestStatusSubmitted,
		ToStatus:   domain.RequestStatusRejected,
	}, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if got := currentStatus(t, svc, req.ID); got != domain.RequestStatusSubmitted {
		t.Fatalf("status changed to %s", got)
	}
	// the level is still open to its approver
	if got := mustDecide(t, svc, req.ID, domain.RoleBuildingTech, domain.DecisionApproved, "").Status; got != domain.RequestStatusBuildingApproved {
		t.Fatalf("expected BUILDING_APPROVED, got %s", got)
	}
}

func TestLedgerEntryOnDraftIsRefused(t *testing.T) {
	svc, _ := newTestService(t)
	draft, _, err := svc.CreateRequest(context.Background(), sampleRequest(t))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	err = appendRaw(t, svc, draft, domain.Approval{
		RequestID:  draft.ID,
		Level:      domain.RoleGodAdmin,
		Decision:   domain.DecisionApproved,
		FromStatus: domain.RequestStatusDraft,
		ToStatus:   domain.RequestStatusExecuted,
	}, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if entries, _ := svc.ApprovalsFor(context.Background(), draft.ID); len(entries) != 0 {
		t.Fatalf("draft gained ledger entries: %+v", entries)
	}
}

func TestLedgerEntryMustMatchItsStatusChange(t *testing.T) {
	svc, _ := newTestService(t)
	req := submittedRequest(t, svc)

	// the request moves to BUILDING_APPROVED but the entry claims a rejection
	err := appendRaw(t, svc, req, domain.Approval{
		RequestID:  req.ID,
		Level:      domain.RoleBuildingTech,
		Decision:   domain.DecisionRejected,
		Comments:   "mismatch",
		FromStatus: domain.RequestStatusSubmitted,
		ToStatus:   domain.RequestStatusRejected,
	}, domain.RequestStatusBuildingApproved)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	// a level that does not own the step
	err = appendRaw(t, svc, req, domain.Approval{
		RequestID:  req.ID,
		Level:      domain.RoleTechDirector,
		Decision:   domain.DecisionApproved,
		FromStatus: domain.RequestStatusSubmitted,
		ToStatus:   domain.RequestStatusBuildingApproved,
	}, domain.RequestStatusBuildingApproved)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition for wrong level, got %v", err)
	}
	if got := currentStatus(t, svc, req.ID); got != domain.RequestStatusSubmitted {
		t.Fatalf("status changed to %s", got)
	}

	// entry and status change that agree commit together
	err = appendRaw(t, svc, req, domain.Approval{
		RequestID:  req.ID,
		Level:      domain.RoleBuildingTech,
		Approver:   "tech",
		Decision:   domain.DecisionApproved,
		FromStatus: domain.RequestStatusSubmitted,
		ToStatus:   domain.RequestStatusBuildingApproved,
	}, domain.RequestStatusBuildingApproved)
	if err != nil {
		t.Fatalf("paired write: %v", err)
	}
	if got := currentStatus(t, svc, req.ID); got != domain.RequestStatusBuildingApproved {
		t.Fatalf("expected BUILDING_APPROVED, got %s", got)
	}
}

func TestLedgerListForOrdersAndCopies(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	req := submittedRequest(t, svc)
	ledger := svc.Ledger()

	for _, role := range approvalChain {
		clock.Advance(time.Hour)
		mustDecide(t, svc, req.ID, role, domain.DecisionApproved, "")
	}
	first, err := ledger.ListFor(ctx, req.ID)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(first) != len(approvalChain) {
		t.Fatalf("expected %d entries, got %d", len(approvalChain), len(first))
	}
	for i, e := range first {
		if e.Level != approvalChain[i] {
			t.Fatalf("position %d: got %s, want %s", i, e.Level, approvalChain[i])
		}
		if i > 0 && !e.DecidedAt.After(first[i-1].DecidedAt) {
			t.Fatalf("position %d decided before its predecessor", i)
		}
	}
	first[0].Comments = "tampered"
	second, _ := ledger.ListFor(ctx, req.ID)
	if second[0].Comments != "" {
		t.Fatalf("ListFor returned shared state")
	}
	if _, err := ledger.ListFor(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound from ListFor, got %v", err)
	}
}
