package core

import (
	"partpulse/pkg/domain"
)

// approvalStep is one row of the request transition table.
type approvalStep struct {
	role     domain.Role
	approved domain.RequestStatus
}

// approvalSteps maps each awaiting status to the role that decides it and
// the status an approval moves the request to. Rejection always leads to REJECTED.
var approvalSteps = map[domain.RequestStatus]approvalStep{
	domain.RequestStatusSubmitted:           {role: domain.RoleBuildingTech, approved: domain.RequestStatusBuildingApproved},
	domain.RequestStatusBuildingApproved:    {role: domain.RoleMaintenanceOrg, approved: domain.RequestStatusMaintenanceApproved},
	domain.RequestStatusMaintenanceApproved: {role: domain.RoleTechDirector, approved: domain.RequestStatusDirectorApproved},
	domain.RequestStatusDirectorApproved:    {role: domain.RoleGodAdmin, approved: domain.RequestStatusExecuted},
}

// Transition is the single authority on legal request decisions. It returns
// the status a decision by role moves current to.
func Transition(current domain.RequestStatus, role domain.Role, decision domain.Decision) (domain.RequestStatus, error) {
	if !role.Valid() {
		return current, domain.ValidationError{Field: "role", Reason: "unknown role " + string(role)}
	}
	if !decision.Valid() {
		return current, domain.ValidationError{Field: "decision", Reason: "unknown decision " + string(decision)}
	}
	if current.Terminal() {
		return current, domain.TransitionError{Entity: domain.EntityRequest, From: string(current), Role: role, Action: "decide", Cause: domain.ErrAlreadyTerminal}
	}
	step, ok := approvalSteps[current]
	if !ok || step.role != role {
		return current, domain.TransitionError{Entity: domain.EntityRequest, From: string(current), Role: role, Action: actionFor(decision), Cause: domain.ErrInvalidTransition}
	}
	if decision == domain.DecisionRejected {
		return domain.RequestStatusRejected, nil
	}
	return step.approved, nil
}

// RequiredRole returns the role that must decide a request in status.
func RequiredRole(status domain.RequestStatus) (domain.Role, bool) {
	step, ok := approvalSteps[status]
	return step.role, ok
}

// submitTransition moves a draft into the approval chain.
func submitTransition(current domain.RequestStatus) (domain.RequestStatus, error) {
	if current.Terminal() {
		return current, domain.TransitionError{Entity: domain.EntityRequest, From: string(current), Action: "submit", Cause: domain.ErrAlreadyTerminal}
	}
	if current != domain.RequestStatusDraft {
		return current, domain.TransitionError{Entity: domain.EntityRequest, From: string(current), Action: "submit", Cause: domain.ErrInvalidTransition}
	}
	return domain.RequestStatusSubmitted, nil
}

func actionFor(decision domain.Decision) string {
	if decision == domain.DecisionRejected {
		return "reject"
	}
	return "approve"
}

// quoteTransitions lists legal quote moves keyed by the operation performing them.
var quoteTransitions = map[string]struct {
	from domain.QuoteStatus
	to   []domain.QuoteStatus
}{
	"respond": {from: domain.QuoteStatusPending, to: []domain.QuoteStatus{domain.QuoteStatusResponded}},
	"review":  {from: domain.QuoteStatusResponded, to: []domain.QuoteStatus{domain.QuoteStatusApproved, domain.QuoteStatusRejected}},
	"order":   {from: domain.QuoteStatusApproved, to: []domain.QuoteStatus{domain.QuoteStatusOrdered}},
}

// quoteTransition validates that action may run on a quote in current.
func quoteTransition(current domain.QuoteStatus, action string) error {
	rule, ok := quoteTransitions[action]
	if !ok {
		return domain.TransitionError{Entity: domain.EntityQuote, From: string(current), Action: action, Cause: domain.ErrInvalidTransition}
	}
	if current.Terminal() {
		return domain.TransitionError{Entity: domain.EntityQuote, From: string(current), Action: action, Cause: domain.ErrAlreadyTerminal}
	}
	if rule.from != current {
		return domain.TransitionError{Entity: domain.EntityQuote, From: string(current), Action: action, Cause: domain.ErrInvalidTransition}
	}
	return nil
}
