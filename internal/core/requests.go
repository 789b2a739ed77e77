package core

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"partpulse/pkg/domain"
)

// RequestFilter narrows ListRequests. Zero fields match everything.
type RequestFilter struct {
	Status     domain.RequestStatus
	BuildingID string
	Priority   domain.Priority
}

func (f RequestFilter) matches(r Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.BuildingID != "" && r.BuildingID != f.BuildingID {
		return false
	}
	if f.Priority != "" && r.Priority != f.Priority {
		return false
	}
	return true
}

// DecideCommand is an approver's decision on a request.
type DecideCommand struct {
	RequestID string
	Role      domain.Role
	Actor     string
	Decision  domain.Decision
	Comments  string
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int64

	execute bool
}

func validateItem(i int, item RequestItem) error {
	field := func(name string) string { return "items[" + strconv.Itoa(i) + "]." + name }
	if strings.TrimSpace(item.Name) == "" && item.PartID == nil {
		return domain.ValidationError{Field: field("name"), Reason: "name or part_id required"}
	}
	if !item.Quantity.IsPositive() {
		return domain.ValidationError{Field: field("quantity"), Reason: "must be greater than zero"}
	}
	if item.EstimatedUnitPrice.IsNegative() {
		return domain.ValidationError{Field: field("estimated_unit_price"), Reason: "must not be negative"}
	}
	return nil
}

func validateDraft(r Request) error {
	if r.Priority != "" && !r.Priority.Valid() {
		return domain.ValidationError{Field: "priority", Reason: "unknown priority " + string(r.Priority)}
	}
	for i, item := range r.Items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}
	return nil
}

func validateSubmittable(r Request) error {
	if len(r.Items) == 0 {
		return domain.ValidationError{Field: "items", Reason: "at least one item required"}
	}
	return validateDraft(r)
}

func prepareDraft(r Request) Request {
	r.Status = domain.RequestStatusDraft
	if r.Priority == "" {
		r.Priority = domain.PriorityNormal
	}
	return r
}

// CreateRequest stores a new request in DRAFT. Items may be empty while drafting.
func (s *Service) CreateRequest(ctx context.Context, req Request) (Request, Result, error) {
	if err := validateDraft(req); err != nil {
		return Request{}, Result{}, err
	}
	var created Request
	res, err := s.run(ctx, "create_request", []zap.Field{zap.String("building_id", req.BuildingID)}, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateRequest(prepareDraft(req))
		return err
	})
	return created, res, err
}

// SubmitNew creates and submits a request in one transaction.
func (s *Service) SubmitNew(ctx context.Context, req Request) (Request, Result, error) {
	if err := validateSubmittable(req); err != nil {
		return Request{}, Result{}, err
	}
	var submitted Request
	res, err := s.run(ctx, "submit_new_request", []zap.Field{zap.String("building_id", req.BuildingID)}, func(tx domain.Transaction) error {
		created, err := tx.CreateRequest(prepareDraft(req))
		if err != nil {
			return err
		}
		submitted, err = tx.UpdateRequest(created.ID, created.Version, func(r *Request) error {
			r.Status = domain.RequestStatusSubmitted
			return nil
		})
		return err
	})
	return submitted, res, err
}

// Submit moves a DRAFT request into the approval chain.
func (s *Service) Submit(ctx context.Context, requestID, actor string) (Request, Result, error) {
	started := time.Now()
	var submitted Request
	var res Result
	err := s.withEntityLock(ctx, lockKey(EntityRequest, requestID), func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.Snapshot().FindRequest(requestID)
			if !ok {
				return domain.NotFoundError{Entity: EntityRequest, ID: requestID}
			}
			next, err := submitTransition(current.Status)
			if err != nil {
				return err
			}
			if err := validateSubmittable(current); err != nil {
				return err
			}
			submitted, err = tx.UpdateRequest(requestID, current.Version, func(r *Request) error {
				r.Status = next
				if r.SubmittedBy == "" {
					r.SubmittedBy = actor
				}
				return nil
			})
			return err
		})
		return err
	})
	s.observe(ctx, "submit_request", started, []zap.Field{zap.String("request_id", requestID)}, err)
	return submitted, res, err
}

// checkDecision applies the decision checks in their reporting order against
// view. It returns the current request and the status the decision leads to.
func checkDecision(view domain.TransactionView, cmd DecideCommand) (Request, domain.RequestStatus, error) {
	current, ok := view.FindRequest(cmd.RequestID)
	if !ok {
		return Request{}, "", domain.NotFoundError{Entity: EntityRequest, ID: cmd.RequestID}
	}
	next, err := Transition(current.Status, cmd.Role, cmd.Decision)
	if err != nil {
		return current, "", err
	}
	if cmd.execute && next != domain.RequestStatusExecuted {
		return current, "", domain.TransitionError{Entity: EntityRequest, From: string(current.Status), Role: cmd.Role, Action: "execute", Cause: domain.ErrInvalidTransition}
	}
	for _, entry := range view.ListApprovals(cmd.RequestID) {
		if entry.Level == cmd.Role {
			return current, "", domain.TransitionError{Entity: EntityRequest, From: string(current.Status), Role: cmd.Role, Action: actionFor(cmd.Decision), Cause: domain.ErrDuplicateApproval}
		}
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != current.Version {
		return current, "", domain.ErrConcurrentModification
	}
	return current, next, nil
}

// validateDecideInput covers the checks that need no stored state.
func validateDecideInput(cmd DecideCommand) error {
	if strings.TrimSpace(cmd.RequestID) == "" {
		return domain.ValidationError{Field: "request_id", Reason: "required"}
	}
	if !cmd.Role.Valid() {
		return domain.ValidationError{Field: "role", Reason: "unknown role " + string(cmd.Role)}
	}
	if !cmd.Decision.Valid() {
		return domain.ValidationError{Field: "decision", Reason: "unknown decision " + string(cmd.Decision)}
	}
	if strings.TrimSpace(cmd.Actor) == "" {
		return domain.ValidationError{Field: "actor", Reason: "required"}
	}
	if cmd.Decision == domain.DecisionRejected && strings.TrimSpace(cmd.Comments) == "" {
		return domain.ErrMissingComments
	}
	return nil
}

// Decide records an approval or rejection by role. The approval ledger entry
// and the status change commit together or not at all.
func (s *Service) Decide(ctx context.Context, cmd DecideCommand) (Request, Result, error) {
	return s.decide(ctx, "decide_request", cmd)
}

// Execute is the final god_admin approval of a DIRECTOR_APPROVED request.
func (s *Service) Execute(ctx context.Context, requestID string, role domain.Role, actor string) (Request, Result, error) {
	return s.decide(ctx, "execute_request", DecideCommand{
		RequestID: requestID,
		Role:      role,
		Actor:     actor,
		Decision:  domain.DecisionApproved,
		execute:   true,
	})
}

func (s *Service) decide(ctx context.Context, operation string, cmd DecideCommand) (Request, Result, error) {
	started := time.Now()
	var decided Request
	var res Result
	err := func() error {
		if err := validateDecideInput(cmd); err != nil {
			return err
		}
		// Report deterministic refusals before contending for the lock.
		if err := s.store.View(ctx, func(v domain.TransactionView) error {
			_, _, err := checkDecision(v, cmd)
			return err
		}); err != nil {
			return err
		}
		return s.withEntityLock(ctx, lockKey(EntityRequest, cmd.RequestID), func() error {
			var err error
			res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
				current, next, err := checkDecision(tx.Snapshot(), cmd)
				if err != nil {
					return err
				}
				decided, err = tx.UpdateRequest(cmd.RequestID, current.Version, func(r *Request) error {
					r.Status = next
					return nil
				})
				if err != nil {
					return err
				}
				_, err = tx.AppendApproval(Approval{
					RequestID:  cmd.RequestID,
					Level:      cmd.Role,
					Approver:   cmd.Actor,
					Decision:   cmd.Decision,
					Comments:   strings.TrimSpace(cmd.Comments),
					FromStatus: current.Status,
					ToStatus:   next,
					DecidedAt:  s.clock.Now(),
				})
				return err
			})
			return err
		})
	}()
	s.observe(ctx, operation, started, []zap.Field{
		zap.String("request_id", cmd.RequestID),
		zap.String("role", string(cmd.Role)),
		zap.String("decision", string(cmd.Decision)),
		zap.String("status", string(decided.Status)),
	}, err)
	return decided, res, err
}

// GetRequest returns a request by id.
func (s *Service) GetRequest(ctx context.Context, id string) (Request, error) {
	var out Request
	err := s.view(ctx, "get_request", func(v domain.TransactionView) error {
		r, ok := v.FindRequest(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityRequest, ID: id}
		}
		out = r
		return nil
	})
	return out, err
}

// ListRequests returns requests matching filter, oldest first.
func (s *Service) ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error) {
	var out []Request
	err := s.view(ctx, "list_requests", func(v domain.TransactionView) error {
		for _, r := range v.ListRequests() {
			if filter.matches(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

func lockKey(entity EntityType, id string) string {
	return string(entity) + ":" + id
}
