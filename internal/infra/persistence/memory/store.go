// Package memory provides an in-memory implementation of the procurement
// persistence store. Durable drivers embed it and persist its snapshot from
// the commit hook.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"partpulse/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Request aliases domain.Request for in-memory persistence operations.
	Request = domain.Request
	// Approval aliases domain.Approval.
	Approval = domain.Approval
	// QuoteRequest aliases domain.QuoteRequest.
	QuoteRequest = domain.QuoteRequest
	// PurchaseOrder aliases domain.PurchaseOrder.
	PurchaseOrder = domain.PurchaseOrder
	SparePart     = domain.SparePart
	Machine       = domain.Machine
	Assembly      = domain.Assembly
	SubAssembly   = domain.SubAssembly
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// Counter keys used for human readable numbering.
const (
	counterApproval = "approval"
	prefixRequest   = "REQ"
	prefixQuote     = "QR"
	prefixOrder     = "PO"
)

type memoryState struct {
	requests      map[string]Request
	approvals     map[string]Approval
	quotes        map[string]QuoteRequest
	orders        map[string]PurchaseOrder
	parts         map[string]SparePart
	machines      map[string]Machine
	assemblies    map[string]Assembly
	subAssemblies map[string]SubAssembly
	counters      map[string]int64
}

// Snapshot captures a point-in-time clone of the store state. Each field is a
// persistence bucket for the durable drivers.
type Snapshot struct {
	Requests       map[string]Request       `json:"requests"`
	Approvals      map[string]Approval      `json:"approvals"`
	Quotes         map[string]QuoteRequest  `json:"quotes"`
	PurchaseOrders map[string]PurchaseOrder `json:"purchase_orders"`
	SpareParts     map[string]SparePart     `json:"spare_parts"`
	Machines       map[string]Machine       `json:"machines"`
	Assemblies     map[string]Assembly      `json:"assemblies"`
	SubAssemblies  map[string]SubAssembly   `json:"sub_assemblies"`
	Counters       map[string]int64         `json:"counters"`
}

func newMemoryState() memoryState {
	return memoryState{
		requests:      make(map[string]Request),
		approvals:     make(map[string]Approval),
		quotes:        make(map[string]QuoteRequest),
		orders:        make(map[string]PurchaseOrder),
		parts:         make(map[string]SparePart),
		machines:      make(map[string]Machine),
		assemblies:    make(map[string]Assembly),
		subAssemblies: make(map[string]SubAssembly),
		counters:      make(map[string]int64),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Requests:       cloneMap(state.requests, cloneRequest),
		Approvals:      cloneMap(state.approvals, identity[Approval]),
		Quotes:         cloneMap(state.quotes, cloneQuote),
		PurchaseOrders: cloneMap(state.orders, cloneOrder),
		SpareParts:     cloneMap(state.parts, identity[SparePart]),
		Machines:       cloneMap(state.machines, cloneMachine),
		Assemblies:     cloneMap(state.assemblies, cloneAssembly),
		SubAssemblies:  cloneMap(state.subAssemblies, cloneSubAssembly),
		Counters:       cloneMap(state.counters, identity[int64]),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{
		requests:      cloneMap(s.Requests, cloneRequest),
		approvals:     cloneMap(s.Approvals, identity[Approval]),
		quotes:        cloneMap(s.Quotes, cloneQuote),
		orders:        cloneMap(s.PurchaseOrders, cloneOrder),
		parts:         cloneMap(s.SpareParts, identity[SparePart]),
		machines:      cloneMap(s.Machines, cloneMachine),
		assemblies:    cloneMap(s.Assemblies, cloneAssembly),
		subAssemblies: cloneMap(s.SubAssemblies, cloneSubAssembly),
		counters:      cloneMap(s.Counters, identity[int64]),
	}
}

func (s memoryState) clone() memoryState {
	return memoryStateFromSnapshot(snapshotFromMemoryState(s))
}

func cloneMap[T any](in map[string]T, cloneFn func(T) T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = cloneFn(v)
	}
	return out
}

func identity[T any](v T) T { return v }

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRequest(r Request) Request {
	if r.Items != nil {
		items := make([]domain.RequestItem, len(r.Items))
		for i, item := range r.Items {
			item.PartID = cloneStringPtr(item.PartID)
			items[i] = item
		}
		r.Items = items
	}
	return r
}

func cloneQuote(q QuoteRequest) QuoteRequest {
	q.RequestID = cloneStringPtr(q.RequestID)
	q.OrderID = cloneStringPtr(q.OrderID)
	if q.Items != nil {
		items := make([]domain.QuoteItem, len(q.Items))
		for i, item := range q.Items {
			item.PartID = cloneStringPtr(item.PartID)
			if item.UnitPrice != nil {
				price := *item.UnitPrice
				item.UnitPrice = &price
			}
			items[i] = item
		}
		q.Items = items
	}
	if q.Response != nil {
		resp := *q.Response
		resp.Lines = cloneLines(resp.Lines)
		resp.Attachments = append([]domain.Attachment(nil), resp.Attachments...)
		if resp.PromisedDelivery != nil {
			at := *resp.PromisedDelivery
			resp.PromisedDelivery = &at
		}
		q.Response = &resp
	}
	if q.Review != nil {
		review := *q.Review
		q.Review = &review
	}
	return q
}

func cloneLines(lines []domain.ResponseLine) []domain.ResponseLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.ResponseLine, len(lines))
	for i, line := range lines {
		line.PartID = cloneStringPtr(line.PartID)
		out[i] = line
	}
	return out
}

func cloneOrder(o PurchaseOrder) PurchaseOrder {
	o.RequestID = cloneStringPtr(o.RequestID)
	o.Lines = cloneLines(o.Lines)
	return o
}

func cloneMachine(m Machine) Machine {
	m.AssemblyIDs = append([]string(nil), m.AssemblyIDs...)
	return m
}

func cloneAssembly(a Assembly) Assembly {
	a.MachineID = cloneStringPtr(a.MachineID)
	a.Parts = append([]domain.PartUsage(nil), a.Parts...)
	a.SubAssemblies = append([]domain.SubAssemblyUsage(nil), a.SubAssemblies...)
	return a
}

func cloneSubAssembly(s SubAssembly) SubAssembly {
	s.Parts = append([]domain.PartUsage(nil), s.Parts...)
	return s
}

// CommitHook receives the post-transaction snapshot before it becomes
// visible. Returning an error aborts the commit.
type CommitHook func(ctx context.Context, snapshot Snapshot) error

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithCommitHook registers a hook run under the store lock on every commit.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) { s.hook = hook }
}

// Store is an in-memory implementation of the persistence interface. Each
// transaction operates on a cloned state that replaces the committed state
// only after rules and the commit hook succeed.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	hook   CommitHook
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCommitHook installs hook after construction. Durable drivers use it
// once they have hydrated the state.
func (s *Store) SetCommitHook(hook CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the configured rules engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the store clock.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if s.hook != nil && len(tx.changes) > 0 {
		if err := s.hook(ctx, snapshotFromMemoryState(tx.state)); err != nil {
			return Result{}, fmt.Errorf("%w: persist snapshot: %w", domain.ErrStoreUnavailable, err)
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(entity domain.EntityType, action domain.Action, before, after any) {
	change := Change{Entity: entity, Action: action}
	if before != nil {
		change.Before = domain.MustChangePayload(before)
	}
	if after != nil {
		change.After = domain.MustChangePayload(after)
	}
	tx.changes = append(tx.changes, change)
}

// nextNumber allocates PREFIX-YYYYMMDD-NNNN with a per-day sequence.
func (tx *transaction) nextNumber(prefix string) string {
	day := tx.now.Format("20060102")
	key := prefix + ":" + day
	tx.state.counters[key]++
	return fmt.Sprintf("%s-%s-%04d", prefix, day, tx.state.counters[key])
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// CreateRequest stores a new request, assigning id and request number when absent.
func (tx *transaction) CreateRequest(r Request) (Request, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.requests[r.ID]; exists {
		return Request{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("request %q already exists", r.ID)}
	}
	if r.RequestNumber == "" {
		r.RequestNumber = tx.nextNumber(prefixRequest)
	}
	for _, existing := range tx.state.requests {
		if existing.RequestNumber == r.RequestNumber {
			return Request{}, domain.ValidationError{Field: "request_number", Reason: fmt.Sprintf("%q already in use", r.RequestNumber)}
		}
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	r.Version = 1
	tx.state.requests[r.ID] = cloneRequest(r)
	tx.recordChange(domain.EntityRequest, domain.ActionCreate, nil, r)
	return cloneRequest(r), nil
}

// UpdateRequest mutates a request when its version still equals expectedVersion.
func (tx *transaction) UpdateRequest(id string, expectedVersion int64, mutator func(*Request) error) (Request, error) {
	current, ok := tx.state.requests[id]
	if !ok {
		return Request{}, domain.NotFoundError{Entity: domain.EntityRequest, ID: id}
	}
	if current.Version != expectedVersion {
		return Request{}, fmt.Errorf("%w: request %q at version %d, expected %d", domain.ErrConcurrentModification, id, current.Version, expectedVersion)
	}
	before := cloneRequest(current)
	if err := mutator(&current); err != nil {
		return Request{}, err
	}
	current.ID = id
	current.RequestNumber = before.RequestNumber
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.requests[id] = cloneRequest(current)
	tx.recordChange(domain.EntityRequest, domain.ActionUpdate, before, current)
	return cloneRequest(current), nil
}

// AppendApproval adds a ledger entry. A second entry for the same
// (request, level) fails with ErrDuplicateApproval.
func (tx *transaction) AppendApproval(a Approval) (Approval, error) {
	if _, ok := tx.state.requests[a.RequestID]; !ok {
		return Approval{}, domain.NotFoundError{Entity: domain.EntityRequest, ID: a.RequestID}
	}
	for _, existing := range tx.state.approvals {
		if existing.RequestID == a.RequestID && existing.Level == a.Level {
			return Approval{}, fmt.Errorf("%w: request %q level %s", domain.ErrDuplicateApproval, a.RequestID, a.Level)
		}
	}
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.approvals[a.ID]; exists {
		return Approval{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("approval %q already exists", a.ID)}
	}
	if a.DecidedAt.IsZero() {
		a.DecidedAt = tx.now
	}
	tx.state.counters[counterApproval]++
	a.Sequence = tx.state.counters[counterApproval]
	tx.state.approvals[a.ID] = a
	tx.recordChange(domain.EntityApproval, domain.ActionCreate, nil, a)
	return a, nil
}

// CreateQuote stores a new quote request, assigning its display code when absent.
func (tx *transaction) CreateQuote(q QuoteRequest) (QuoteRequest, error) {
	if q.ID == "" {
		q.ID = tx.store.newID()
	}
	if _, exists := tx.state.quotes[q.ID]; exists {
		return QuoteRequest{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("quote %q already exists", q.ID)}
	}
	if q.QuoteCode == "" {
		q.QuoteCode = tx.nextNumber(prefixQuote)
	}
	for _, existing := range tx.state.quotes {
		if existing.QuoteCode == q.QuoteCode {
			return QuoteRequest{}, domain.ValidationError{Field: "quote_code", Reason: fmt.Sprintf("%q already in use", q.QuoteCode)}
		}
	}
	q.CreatedAt = tx.now
	q.UpdatedAt = tx.now
	q.Version = 1
	tx.state.quotes[q.ID] = cloneQuote(q)
	tx.recordChange(domain.EntityQuote, domain.ActionCreate, nil, q)
	return cloneQuote(q), nil
}

// UpdateQuote mutates a quote when its version still equals expectedVersion.
func (tx *transaction) UpdateQuote(id string, expectedVersion int64, mutator func(*QuoteRequest) error) (QuoteRequest, error) {
	current, ok := tx.state.quotes[id]
	if !ok {
		return QuoteRequest{}, domain.NotFoundError{Entity: domain.EntityQuote, ID: id}
	}
	if current.Version != expectedVersion {
		return QuoteRequest{}, fmt.Errorf("%w: quote %q at version %d, expected %d", domain.ErrConcurrentModification, id, current.Version, expectedVersion)
	}
	before := cloneQuote(current)
	if err := mutator(&current); err != nil {
		return QuoteRequest{}, err
	}
	current.ID = id
	current.QuoteCode = before.QuoteCode
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current.Version = before.Version + 1
	tx.state.quotes[id] = cloneQuote(current)
	tx.recordChange(domain.EntityQuote, domain.ActionUpdate, before, current)
	return cloneQuote(current), nil
}

// CreatePurchaseOrder stores a purchase order; at most one may exist per quote.
func (tx *transaction) CreatePurchaseOrder(o PurchaseOrder) (PurchaseOrder, error) {
	if _, ok := tx.state.quotes[o.QuoteID]; !ok {
		return PurchaseOrder{}, domain.NotFoundError{Entity: domain.EntityQuote, ID: o.QuoteID}
	}
	for _, existing := range tx.state.orders {
		if existing.QuoteID == o.QuoteID {
			return PurchaseOrder{}, domain.TransitionError{Entity: domain.EntityQuote, From: string(domain.QuoteStatusOrdered), Action: "order", Cause: domain.ErrAlreadyTerminal}
		}
	}
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if o.PONumber == "" {
		o.PONumber = tx.nextNumber(prefixOrder)
	}
	if o.Status == "" {
		o.Status = domain.PurchaseOrderIssued
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.orders[o.ID] = cloneOrder(o)
	tx.recordChange(domain.EntityPurchaseOrder, domain.ActionCreate, nil, o)
	return cloneOrder(o), nil
}

// CreateSparePart stores a catalogue part.
func (tx *transaction) CreateSparePart(p SparePart) (SparePart, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.parts[p.ID]; exists {
		return SparePart{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("spare part %q already exists", p.ID)}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.parts[p.ID] = p
	tx.recordChange(domain.EntitySparePart, domain.ActionCreate, nil, p)
	return p, nil
}

// UpdateSparePart mutates a catalogue part.
func (tx *transaction) UpdateSparePart(id string, mutator func(*SparePart) error) (SparePart, error) {
	current, ok := tx.state.parts[id]
	if !ok {
		return SparePart{}, domain.NotFoundError{Entity: domain.EntitySparePart, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return SparePart{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.parts[id] = current
	tx.recordChange(domain.EntitySparePart, domain.ActionUpdate, before, current)
	return current, nil
}

// CreateMachine stores a machine.
func (tx *transaction) CreateMachine(m Machine) (Machine, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.machines[m.ID]; exists {
		return Machine{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("machine %q already exists", m.ID)}
	}
	for _, id := range m.AssemblyIDs {
		if _, ok := tx.state.assemblies[id]; !ok {
			return Machine{}, domain.NotFoundError{Entity: domain.EntityAssembly, ID: id}
		}
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.machines[m.ID] = cloneMachine(m)
	tx.recordChange(domain.EntityMachine, domain.ActionCreate, nil, m)
	return cloneMachine(m), nil
}

// CreateAssembly stores an assembly after checking its references.
func (tx *transaction) CreateAssembly(a Assembly) (Assembly, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.assemblies[a.ID]; exists {
		return Assembly{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("assembly %q already exists", a.ID)}
	}
	if err := tx.checkParts(a.Parts); err != nil {
		return Assembly{}, err
	}
	for _, usage := range a.SubAssemblies {
		if _, ok := tx.state.subAssemblies[usage.SubAssemblyID]; !ok {
			return Assembly{}, domain.NotFoundError{Entity: domain.EntitySubAssembly, ID: usage.SubAssemblyID}
		}
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.assemblies[a.ID] = cloneAssembly(a)
	if a.MachineID != nil {
		machine, ok := tx.state.machines[*a.MachineID]
		if !ok {
			return Assembly{}, domain.NotFoundError{Entity: domain.EntityMachine, ID: *a.MachineID}
		}
		before := cloneMachine(machine)
		if !containsString(machine.AssemblyIDs, a.ID) {
			machine.AssemblyIDs = append(machine.AssemblyIDs, a.ID)
			machine.UpdatedAt = tx.now
			tx.state.machines[machine.ID] = cloneMachine(machine)
			tx.recordChange(domain.EntityMachine, domain.ActionUpdate, before, machine)
		}
	}
	tx.recordChange(domain.EntityAssembly, domain.ActionCreate, nil, a)
	return cloneAssembly(a), nil
}

// CreateSubAssembly stores a sub-assembly after checking its parts.
func (tx *transaction) CreateSubAssembly(s SubAssembly) (SubAssembly, error) {
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	if _, exists := tx.state.subAssemblies[s.ID]; exists {
		return SubAssembly{}, domain.ValidationError{Field: "id", Reason: fmt.Sprintf("sub-assembly %q already exists", s.ID)}
	}
	if err := tx.checkParts(s.Parts); err != nil {
		return SubAssembly{}, err
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.subAssemblies[s.ID] = cloneSubAssembly(s)
	tx.recordChange(domain.EntitySubAssembly, domain.ActionCreate, nil, s)
	return cloneSubAssembly(s), nil
}

func (tx *transaction) checkParts(parts []domain.PartUsage) error {
	for _, usage := range parts {
		if _, ok := tx.state.parts[usage.PartID]; !ok {
			return domain.NotFoundError{Entity: domain.EntitySparePart, ID: usage.PartID}
		}
	}
	return nil
}

func containsString(values []string, id string) bool {
	for _, v := range values {
		if v == id {
			return true
		}
	}
	return false
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListRequests returns requests ordered by creation time then id.
func (v transactionView) ListRequests() []Request {
	out := make([]Request, 0, len(v.state.requests))
	for _, r := range v.state.requests {
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindRequest retrieves a request by ID from the snapshot.
func (v transactionView) FindRequest(id string) (Request, bool) {
	r, ok := v.state.requests[id]
	if !ok {
		return Request{}, false
	}
	return cloneRequest(r), true
}

// ListApprovals returns ledger entries for requestID oldest first. An empty
// requestID lists the whole ledger.
func (v transactionView) ListApprovals(requestID string) []Approval {
	out := make([]Approval, 0)
	for _, a := range v.state.approvals {
		if requestID == "" || a.RequestID == requestID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DecidedAt.Equal(out[j].DecidedAt) {
			return out[i].DecidedAt.Before(out[j].DecidedAt)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// ListQuotes returns quotes ordered by creation time then id.
func (v transactionView) ListQuotes() []QuoteRequest {
	out := make([]QuoteRequest, 0, len(v.state.quotes))
	for _, q := range v.state.quotes {
		out = append(out, cloneQuote(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindQuote retrieves a quote by ID from the snapshot.
func (v transactionView) FindQuote(id string) (QuoteRequest, bool) {
	q, ok := v.state.quotes[id]
	if !ok {
		return QuoteRequest{}, false
	}
	return cloneQuote(q), true
}

// ListPurchaseOrders returns purchase orders ordered by PO number.
func (v transactionView) ListPurchaseOrders() []PurchaseOrder {
	out := make([]PurchaseOrder, 0, len(v.state.orders))
	for _, o := range v.state.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PONumber < out[j].PONumber })
	return out
}

// FindPurchaseOrder retrieves a purchase order by ID.
func (v transactionView) FindPurchaseOrder(id string) (PurchaseOrder, bool) {
	o, ok := v.state.orders[id]
	if !ok {
		return PurchaseOrder{}, false
	}
	return cloneOrder(o), true
}

// ListSpareParts returns parts ordered by part number.
func (v transactionView) ListSpareParts() []SparePart {
	out := make([]SparePart, 0, len(v.state.parts))
	for _, p := range v.state.parts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PartNumber != out[j].PartNumber {
			return out[i].PartNumber < out[j].PartNumber
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindSparePart retrieves a part by ID.
func (v transactionView) FindSparePart(id string) (SparePart, bool) {
	p, ok := v.state.parts[id]
	return p, ok
}

// ListMachines returns machines ordered by name.
func (v transactionView) ListMachines() []Machine {
	out := make([]Machine, 0, len(v.state.machines))
	for _, m := range v.state.machines {
		out = append(out, cloneMachine(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindMachine retrieves a machine by ID.
func (v transactionView) FindMachine(id string) (Machine, bool) {
	m, ok := v.state.machines[id]
	if !ok {
		return Machine{}, false
	}
	return cloneMachine(m), true
}

// ListAssemblies returns assemblies ordered by name.
func (v transactionView) ListAssemblies() []Assembly {
	out := make([]Assembly, 0, len(v.state.assemblies))
	for _, a := range v.state.assemblies {
		out = append(out, cloneAssembly(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindAssembly retrieves an assembly by ID.
func (v transactionView) FindAssembly(id string) (Assembly, bool) {
	a, ok := v.state.assemblies[id]
	if !ok {
		return Assembly{}, false
	}
	return cloneAssembly(a), true
}

// FindSubAssembly retrieves a sub-assembly by ID.
func (v transactionView) FindSubAssembly(id string) (SubAssembly, bool) {
	s, ok := v.state.subAssemblies[id]
	if !ok {
		return SubAssembly{}, false
	}
	return cloneSubAssembly(s), true
}
