package core

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"partpulse/pkg/domain"
)

// BudgetReport is the estimated request value broken down by status and building.
type BudgetReport struct {
	Total      decimal.Decimal                          `json:"total"`
	Approved   decimal.Decimal                          `json:"approved"`
	ByStatus   map[domain.RequestStatus]decimal.Decimal `json:"by_status"`
	ByBuilding map[string]decimal.Decimal               `json:"by_building"`
}

// QuoteReport counts quotes per status and sums issued purchase orders.
type QuoteReport struct {
	Counts       map[domain.QuoteStatus]int `json:"counts"`
	OrderedValue decimal.Decimal            `json:"ordered_value"`
	Orders       int                        `json:"orders"`
}

// RequestHistory is a request together with its ledger entries.
type RequestHistory struct {
	Request   Request    `json:"request"`
	Approvals []Approval `json:"approvals"`
	// AwaitingRole is empty once the request is terminal.
	AwaitingRole domain.Role `json:"awaiting_role,omitempty"`
}

// PendingCounts returns how many requests await each approval role.
func PendingCounts(view domain.TransactionView) map[domain.Role]int {
	counts := map[domain.Role]int{
		domain.RoleBuildingTech:   0,
		domain.RoleMaintenanceOrg: 0,
		domain.RoleTechDirector:   0,
		domain.RoleGodAdmin:       0,
	}
	for _, r := range view.ListRequests() {
		if role, ok := RequiredRole(r.Status); ok {
			counts[role]++
		}
	}
	return counts
}

// BudgetSummary totals estimated request value. Approved covers requests
// the director signed off, executed or not.
func BudgetSummary(view domain.TransactionView) BudgetReport {
	report := BudgetReport{
		ByStatus:   make(map[domain.RequestStatus]decimal.Decimal),
		ByBuilding: make(map[string]decimal.Decimal),
	}
	for _, r := range view.ListRequests() {
		value := r.EstimatedTotal()
		report.Total = report.Total.Add(value)
		report.ByStatus[r.Status] = report.ByStatus[r.Status].Add(value)
		report.ByBuilding[r.BuildingID] = report.ByBuilding[r.BuildingID].Add(value)
		if r.Status == domain.RequestStatusDirectorApproved || r.Status == domain.RequestStatusExecuted {
			report.Approved = report.Approved.Add(value)
		}
	}
	return report
}

// QuoteSummary counts quotes by status and totals issued orders.
func QuoteSummary(view domain.TransactionView) QuoteReport {
	report := QuoteReport{Counts: make(map[domain.QuoteStatus]int)}
	for _, q := range view.ListQuotes() {
		report.Counts[q.Status]++
	}
	for _, o := range view.ListPurchaseOrders() {
		report.Orders++
		report.OrderedValue = report.OrderedValue.Add(o.GrandTotal)
	}
	return report
}

// History assembles the request and its ordered ledger.
func History(view domain.TransactionView, requestID string) (RequestHistory, error) {
	r, ok := view.FindRequest(requestID)
	if !ok {
		return RequestHistory{}, domain.NotFoundError{Entity: EntityRequest, ID: requestID}
	}
	role, _ := RequiredRole(r.Status)
	return RequestHistory{Request: r, Approvals: view.ListApprovals(requestID), AwaitingRole: role}, nil
}

// LowStock lists parts at or below their reorder level, most depleted first.
func LowStock(view domain.TransactionView) []SparePart {
	var out []SparePart
	for _, p := range view.ListSpareParts() {
		if p.StockLevel.LessThanOrEqual(p.ReorderLevel) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StockLevel.Sub(out[i].ReorderLevel).LessThan(out[j].StockLevel.Sub(out[j].ReorderLevel))
	})
	return out
}

// PendingCounts reports the approval queue length per role.
func (s *Service) PendingCounts(ctx context.Context) (map[domain.Role]int, error) {
	var out map[domain.Role]int
	err := s.view(ctx, "pending_counts", func(v domain.TransactionView) error {
		out = PendingCounts(v)
		return nil
	})
	return out, err
}

// BudgetSummary reports estimated request value.
func (s *Service) BudgetSummary(ctx context.Context) (BudgetReport, error) {
	var out BudgetReport
	err := s.view(ctx, "budget_summary", func(v domain.TransactionView) error {
		out = BudgetSummary(v)
		return nil
	})
	return out, err
}

// QuoteSummary reports quote and order totals.
func (s *Service) QuoteSummary(ctx context.Context) (QuoteReport, error) {
	var out QuoteReport
	err := s.view(ctx, "quote_summary", func(v domain.TransactionView) error {
		out = QuoteSummary(v)
		return nil
	})
	return out, err
}

// RequestHistory returns the request with its approval trail.
func (s *Service) RequestHistory(ctx context.Context, requestID string) (RequestHistory, error) {
	var out RequestHistory
	err := s.view(ctx, "request_history", func(v domain.TransactionView) error {
		var err error
		out, err = History(v, requestID)
		return err
	})
	return out, err
}

// LowStock lists parts that need reordering.
func (s *Service) LowStock(ctx context.Context) ([]SparePart, error) {
	var out []SparePart
	err := s.view(ctx, "low_stock", func(v domain.TransactionView) error {
		out = LowStock(v)
		return nil
	})
	return out, err
}

// ApprovalsFor lists the ledger entries of a request.
func (s *Service) ApprovalsFor(ctx context.Context, requestID string) ([]Approval, error) {
	return s.ledger.ListFor(ctx, requestID)
}
