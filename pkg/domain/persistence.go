package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateRequest(Request) (Request, error)
	// UpdateRequest applies mutator only when the stored version equals
	// expectedVersion and bumps the version on success.
	UpdateRequest(id string, expectedVersion int64, mutator func(*Request) error) (Request, error)
	AppendApproval(Approval) (Approval, error)
	CreateQuote(QuoteRequest) (QuoteRequest, error)
	UpdateQuote(id string, expectedVersion int64, mutator func(*QuoteRequest) error) (QuoteRequest, error)
	CreatePurchaseOrder(PurchaseOrder) (PurchaseOrder, error)
	CreateSparePart(SparePart) (SparePart, error)
	UpdateSparePart(id string, mutator func(*SparePart) error) (SparePart, error)
	CreateMachine(Machine) (Machine, error)
	CreateAssembly(Assembly) (Assembly, error)
	CreateSubAssembly(SubAssembly) (SubAssembly, error)
}

// TransactionView provides read-only access to snapshot data for rules and projections.
type TransactionView interface {
	ListRequests() []Request
	FindRequest(id string) (Request, bool)
	ListApprovals(requestID string) []Approval
	ListQuotes() []QuoteRequest
	FindQuote(id string) (QuoteRequest, bool)
	ListPurchaseOrders() []PurchaseOrder
	FindPurchaseOrder(id string) (PurchaseOrder, bool)
	ListSpareParts() []SparePart
	FindSparePart(id string) (SparePart, bool)
	ListMachines() []Machine
	FindMachine(id string) (Machine, bool)
	FindAssembly(id string) (Assembly, bool)
	ListAssemblies() []Assembly
	FindSubAssembly(id string) (SubAssembly, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	RulesEngine() *RulesEngine
}
