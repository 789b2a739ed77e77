// Package domain defines the persistent procurement entities, value types and
// rule evaluation primitives used by partpulse.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityRequest identifies a procurement request.
	EntityRequest EntityType = "request"
	// EntityApproval identifies an approval ledger entry.
	EntityApproval EntityType = "approval"
	// EntityQuote identifies a supplier quote request.
	EntityQuote EntityType = "quote_request"
	// EntityPurchaseOrder identifies a purchase order created from a quote.
	EntityPurchaseOrder EntityType = "purchase_order"
	EntitySparePart     EntityType = "spare_part"
	EntityMachine       EntityType = "machine"
	EntityAssembly      EntityType = "assembly"
	EntitySubAssembly   EntityType = "sub_assembly"
)

// RequestStatus enumerates the procurement request lifecycle.
type RequestStatus string

// Request lifecycle states. EXECUTED and REJECTED are terminal.
const (
	RequestStatusDraft               RequestStatus = "DRAFT"
	RequestStatusSubmitted           RequestStatus = "SUBMITTED"
	RequestStatusBuildingApproved    RequestStatus = "BUILDING_APPROVED"
	RequestStatusMaintenanceApproved RequestStatus = "MAINTENANCE_APPROVED"
	RequestStatusDirectorApproved    RequestStatus = "DIRECTOR_APPROVED"
	RequestStatusExecuted            RequestStatus = "EXECUTED"
	RequestStatusRejected            RequestStatus = "REJECTED"
)

// Rank orders statuses along the approval path. REJECTED and unknown values rank -1.
func (s RequestStatus) Rank() int {
	switch s {
	case RequestStatusDraft:
		return 0
	case RequestStatusSubmitted:
		return 1
	case RequestStatusBuildingApproved:
		return 2
	case RequestStatusMaintenanceApproved:
		return 3
	case RequestStatusDirectorApproved:
		return 4
	case RequestStatusExecuted:
		return 5
	default:
		return -1
	}
}

// Valid reports whether s is a defined request status.
func (s RequestStatus) Valid() bool {
	return s == RequestStatusRejected || s.Rank() >= 0
}

// Terminal reports whether no further transition may leave s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusExecuted || s == RequestStatusRejected
}

// Priority classifies how urgently a request must be handled.
type Priority string

// Request priorities.
const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is a defined priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Role is an actor role. The four approval roles double as approval levels.
type Role string

// Approval roles in the order a request must pass them.
const (
	RoleBuildingTech   Role = "building_tech"
	RoleMaintenanceOrg Role = "maintenance_org"
	RoleTechDirector   Role = "tech_director"
	RoleGodAdmin       Role = "god_admin"
)

// Level returns the ordinal approval level (1..4) for r, or 0 when r is not an approval role.
func (r Role) Level() int {
	switch r {
	case RoleBuildingTech:
		return 1
	case RoleMaintenanceOrg:
		return 2
	case RoleTechDirector:
		return 3
	case RoleGodAdmin:
		return 4
	}
	return 0
}

// Valid reports whether r is one of the approval roles.
func (r Role) Valid() bool { return r.Level() > 0 }

// Decision is the outcome an approver records.
type Decision string

// Approval decisions.
const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// Valid reports whether d is a defined decision.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// QuoteStatus enumerates the supplier quote lifecycle.
type QuoteStatus string

// Quote lifecycle states. ordered and rejected are terminal.
const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusResponded QuoteStatus = "responded"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusOrdered   QuoteStatus = "ordered"
)

// Valid reports whether s is a defined quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusResponded, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusOrdered:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusOrdered || s == QuoteStatusRejected
}

// PurchaseOrderStatus tracks a purchase order after issue.
type PurchaseOrderStatus string

// PurchaseOrderIssued is the status every purchase order is created with.
const PurchaseOrderIssued PurchaseOrderStatus = "issued"

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request is a procurement ask originating from a building technician.
type Request struct {
	Base
	RequestNumber string        `json:"request_number"`
	BuildingID    string        `json:"building_id"`
	Priority      Priority      `json:"priority"`
	Description   string        `json:"description"`
	Notes         string        `json:"notes"`
	Status        RequestStatus `json:"status"`
	SubmittedBy   string        `json:"submitted_by"`
	Items         []RequestItem `json:"items"`
	Version       int64         `json:"version"`
}

// EstimatedTotal sums quantity times estimated unit price across items.
func (r Request) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// RequestItem is a requested line item.
type RequestItem struct {
	Name               string          `json:"name"`
	PartID             *string         `json:"part_id,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	Unit               string          `json:"unit"`
	EstimatedUnitPrice decimal.Decimal `json:"estimated_unit_price"`
}

// LineTotal returns quantity times estimated unit price rounded to cents.
func (i RequestItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.EstimatedUnitPrice).Round(2)
}

// Approval is one immutable ledger entry per (request, level).
type Approval struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id"`
	Level      Role          `json:"level"`
	Approver   string        `json:"approver"`
	Decision   Decision      `json:"decision"`
	Comments   string        `json:"comments"`
	FromStatus RequestStatus `json:"from_status"`
	ToStatus   RequestStatus `json:"to_status"`
	DecidedAt  time.Time     `json:"decided_at"`
	Sequence   int64         `json:"sequence"`
}

// QuoteItem is a part solicited from a supplier.
type QuoteItem struct {
	PartID      *string          `json:"part_id,omitempty"`
	Name        string           `json:"name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	SupplierSKU string           `json:"supplier_sku,omitempty"`
}

// Attachment references an opaque file held in the blob store.
type Attachment struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes"`
	URL         string `json:"url,omitempty"`
}

// ResponseLine is a supplier's priced answer for one quote item.
type ResponseLine struct {
	Name      string          `json:"name"`
	PartID    *string         `json:"part_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Charges are the additional amounts a supplier adds on top of the lines.
type Charges struct {
	Transport        decimal.Decimal `json:"transport"`
	MinimumOrder     decimal.Decimal `json:"minimum_order_charge"`
	Other            decimal.Decimal `json:"other_charge_amount"`
	OtherDescription string          `json:"other_charge_description,omitempty"`
}

// SupplierResponse is the priced response recorded against a quote request.
type SupplierResponse struct {
	Lines              []ResponseLine  `json:"lines"`
	Charges            Charges         `json:"charges"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	QuotedPricePerUnit decimal.Decimal `json:"quoted_price_per_unit"`
	PromisedDelivery   *time.Time      `json:"promised_delivery,omitempty"`
	PaymentTerms       string          `json:"payment_terms,omitempty"`
	Attachments        []Attachment    `json:"attachments,omitempty"`
	RespondedAt        time.Time       `json:"responded_at"`
}

// QuoteReview captures the reviewer decision on a responded quote.
type QuoteReview struct {
	Reviewer   string    `json:"reviewer"`
	Decision   Decision  `json:"decision"`
	Comments   string    `json:"comments"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// QuoteRequest is a solicitation sent to one supplier.
type QuoteRequest struct {
	Base
	QuoteCode      string            `json:"quote_code"`
	SupplierID     string            `json:"supplier_id"`
	SupplierName   string            `json:"supplier_name"`
	RequestID      *string           `json:"request_id,omitempty"`
	Items          []QuoteItem       `json:"items"`
	Status         QuoteStatus       `json:"status"`
	EstimatedTotal decimal.Decimal   `json:"estimated_total"`
	RequestNotes   string            `json:"request_notes"`
	CreatedBy      string            `json:"created_by"`
	Response       *SupplierResponse `json:"response,omitempty"`
	Review         *QuoteReview      `json:"review,omitempty"`
	OrderID        *string           `json:"order_id,omitempty"`
	Version        int64             `json:"version"`
}

// PurchaseOrder is issued from an approved quote.
type PurchaseOrder struct {
	Base
	PONumber   string              `json:"po_number"`
	QuoteID    string              `json:"quote_id"`
	SupplierID string              `json:"supplier_id"`
	RequestID  *string             `json:"request_id,omitempty"`
	Lines      []ResponseLine      `json:"lines"`
	Charges    Charges             `json:"charges"`
	Subtotal   decimal.Decimal     `json:"subtotal"`
	GrandTotal decimal.Decimal     `json:"grand_total"`
	Status     PurchaseOrderStatus `json:"status"`
	Notes      string              `json:"notes"`
	CreatedBy  string              `json:"created_by"`
}

// SparePart is a stocked catalogue part.
type SparePart struct {
	Base
	PartNumber   string          `json:"part_number"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	StockLevel   decimal.Decimal `json:"stock_level"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// PartUsage references a part with a quantity multiplier.
type PartUsage struct {
	PartID   string          `json:"part_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SubAssemblyUsage references a sub-assembly with a quantity multiplier.
type SubAssemblyUsage struct {
	SubAssemblyID string          `json:"sub_assembly_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// SubAssembly groups parts; it is the inner level of the BOM hierarchy.
type SubAssembly struct {
	Base
	Name  string      `json:"name"`
	Parts []PartUsage `json:"parts"`
}

// Assembly groups parts and sub-assemblies under a machine.
type Assembly struct {
	Base
	Name          string             `json:"name"`
	MachineID     *string            `json:"machine_id,omitempty"`
	Parts         []PartUsage        `json:"parts"`
	SubAssemblies []SubAssemblyUsage `json:"sub_assemblies"`
}

// Machine is a maintained asset.
type Machine struct {
	Base
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	BuildingID  string   `json:"building_id"`
	AssemblyIDs []string `json:"assembly_ids"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before ChangePayload
	After  ChangePayload
}

// Action indicates the type of modification performed.
type Action string

// Change actions captured in the transaction change log.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
	Cause    error
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}
