package core

import (
	"context"
	"fmt"

	"partpulse/pkg/domain"
)

// ApprovalOnceRule blocks a commit that leaves two ledger entries for the
// same request and level.
func ApprovalOnceRule() domain.Rule {
	return approvalOnceRule{}
}

type approvalOnceRule struct{}

func (approvalOnceRule) Name() string { return "approval_once" }

func (approvalOnceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	checked := make(map[string]struct{})
	for _, change := range changes {
		if change.Entity != domain.EntityApproval || change.Action != domain.ActionCreate {
			continue
		}
		entry, ok := decodeChangePayload[domain.Approval](change.After)
		if !ok {
			continue
		}
		if _, seen := checked[entry.RequestID]; !seen {
			checked[entry.RequestID] = struct{}{}
			levels := make(map[domain.Role]int)
			for _, existing := range view.ListApprovals(entry.RequestID) {
				levels[existing.Level]++
			}
			for level, count := range levels {
				if count > 1 {
					res.Violations = append(res.Violations, domain.Violation{
						Rule:     "approval_once",
						Severity: domain.SeverityBlock,
						Message:  fmt.Sprintf("request %s has %d decisions at level %s", entry.RequestID, count, level),
						Entity:   domain.EntityApproval,
						EntityID: entry.ID,
						Cause:    domain.ErrDuplicateApproval,
					})
				}
			}
		}
	}
	return res, nil
}

// ApprovalTransitionRule blocks a ledger entry that is not committed together
// with the request status change it records. The entry's FromStatus and
// ToStatus must match an update of that request in the same change set, and
// the move must be the one the lifecycle table assigns to its level and
// decision.
func ApprovalTransitionRule() domain.Rule {
	return approvalTransitionRule{}
}

type approvalTransitionRule struct{}

func (approvalTransitionRule) Name() string { return "approval_transition" }

type statusMove struct {
	from, to domain.RequestStatus
}

func (r approvalTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	moves := make(map[string][]statusMove)
	for _, change := range changes {
		if change.Entity != domain.EntityRequest || change.Action != domain.ActionUpdate {
			continue
		}
		before, okBefore := decodeChangePayload[domain.Request](change.Before)
		after, okAfter := decodeChangePayload[domain.Request](change.After)
		if !okBefore || !okAfter || before.Status == after.Status {
			continue
		}
		moves[after.ID] = append(moves[after.ID], statusMove{from: before.Status, to: after.Status})
	}
	for _, change := range changes {
		if change.Entity != domain.EntityApproval || change.Action != domain.ActionCreate {
			continue
		}
		entry, ok := decodeChangePayload[domain.Approval](change.After)
		if !ok {
			continue
		}
		if msg := r.check(entry, moves[entry.RequestID]); msg != "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  msg,
				Entity:   domain.EntityApproval,
				EntityID: entry.ID,
				Cause:    domain.ErrInvalidTransition,
			})
		}
	}
	return res, nil
}

func (approvalTransitionRule) check(entry domain.Approval, moves []statusMove) string {
	next, err := Transition(entry.FromStatus, entry.Level, entry.Decision)
	if err != nil {
		return fmt.Sprintf("ledger entry for request %s does not follow the lifecycle: %v", entry.RequestID, err)
	}
	if next != entry.ToStatus {
		return fmt.Sprintf("ledger entry for request %s records %s -> %s, lifecycle gives %s", entry.RequestID, entry.FromStatus, entry.ToStatus, next)
	}
	for _, m := range moves {
		if m.from == entry.FromStatus && m.to == entry.ToStatus {
			return ""
		}
	}
	return fmt.Sprintf("ledger entry for request %s has no matching status change %s -> %s", entry.RequestID, entry.FromStatus, entry.ToStatus)
}
