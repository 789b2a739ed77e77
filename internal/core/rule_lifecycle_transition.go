package core

import (
	"context"
	"fmt"

	"partpulse/pkg/domain"
)

// LifecycleTransitionRule blocks illegal status changes on requests and
// quotes at commit time, whichever code path produced them.
func LifecycleTransitionRule() domain.Rule {
	return lifecycleTransitionRule{}
}

type lifecycleTransitionRule struct{}

type lifecycleMachine struct {
	entity   domain.EntityType
	label    string
	initial  map[string]struct{}
	terminal map[string]struct{}
	next     map[string]map[string]struct{}
	extract  func(payload domain.ChangePayload) (id string, state string, ok bool)
}

var lifecycleMachines = map[domain.EntityType]lifecycleMachine{
	domain.EntityRequest: {
		entity:   domain.EntityRequest,
		label:    "request",
		initial:  toSet(string(domain.RequestStatusDraft)),
		terminal: toSet(string(domain.RequestStatusExecuted), string(domain.RequestStatusRejected)),
		next:     requestMoves(),
		extract: func(payload domain.ChangePayload) (string, string, bool) {
			request, ok := decodeChangePayload[domain.Request](payload)
			if !ok {
				return "", "", false
			}
			return request.ID, string(request.Status), true
		},
	},
	domain.EntityQuote: {
		entity:   domain.EntityQuote,
		label:    "quote",
		initial:  toSet(string(domain.QuoteStatusPending)),
		terminal: toSet(string(domain.QuoteStatusOrdered), string(domain.QuoteStatusRejected)),
		next:     quoteMoves(),
		extract: func(payload domain.ChangePayload) (string, string, bool) {
			quote, ok := decodeChangePayload[domain.QuoteRequest](payload)
			if !ok {
				return "", "", false
			}
			return quote.ID, string(quote.Status), true
		},
	},
}

// requestMoves derives legal single-step moves from the transition table:
// draft to submitted, each approval step forward, and any awaiting status to REJECTED.
func requestMoves() map[string]map[string]struct{} {
	moves := map[string]map[string]struct{}{
		string(domain.RequestStatusDraft): toSet(string(domain.RequestStatusSubmitted)),
	}
	for from, step := range approvalSteps {
		moves[string(from)] = toSet(string(step.approved), string(domain.RequestStatusRejected))
	}
	return moves
}

func quoteMoves() map[string]map[string]struct{} {
	moves := make(map[string]map[string]struct{}, len(quoteTransitions))
	for _, t := range quoteTransitions {
		set, ok := moves[string(t.from)]
		if !ok {
			set = make(map[string]struct{})
			moves[string(t.from)] = set
		}
		for _, to := range t.to {
			set[string(to)] = struct{}{}
		}
	}
	return moves
}

func (lifecycleTransitionRule) Name() string { return "lifecycle_transition" }

func (r lifecycleTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		machine, ok := lifecycleMachines[change.Entity]
		if !ok {
			continue
		}
		afterID, afterState, ok := machine.extract(change.After)
		if !ok {
			continue
		}
		beforeID, beforeState, hadBefore := machine.extract(change.Before)
		if !hadBefore {
			if _, valid := machine.initial[afterState]; !valid {
				res.Violations = append(res.Violations, r.violation(machine, afterID, domain.ErrInvalidTransition,
					fmt.Sprintf("%s %s must be created in an initial state, got %s", machine.label, afterID, afterState)))
			}
			continue
		}
		if beforeState == afterState {
			continue
		}
		if _, terminal := machine.terminal[beforeState]; terminal {
			res.Violations = append(res.Violations, r.violation(machine, afterID, domain.ErrAlreadyTerminal,
				fmt.Sprintf("cannot move %s %s from terminal state %s to %s", machine.label, beforeID, beforeState, afterState)))
			continue
		}
		if _, legal := machine.next[beforeState][afterState]; !legal {
			res.Violations = append(res.Violations, r.violation(machine, afterID, domain.ErrInvalidTransition,
				fmt.Sprintf("%s %s cannot move from %s to %s", machine.label, beforeID, beforeState, afterState)))
		}
	}
	return res, nil
}

func (lifecycleTransitionRule) violation(machine lifecycleMachine, id string, cause error, msg string) domain.Violation {
	return domain.Violation{
		Rule:     "lifecycle_transition",
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   machine.entity,
		EntityID: id,
		Cause:    cause,
	}
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
