package core

import "partpulse/pkg/domain"

type (
	EntityType         = domain.EntityType
	Base               = domain.Base
	Request            = domain.Request
	RequestItem        = domain.RequestItem
	RequestStatus      = domain.RequestStatus
	Priority           = domain.Priority
	Role               = domain.Role
	Decision           = domain.Decision
	Approval           = domain.Approval
	QuoteRequest       = domain.QuoteRequest
	QuoteItem          = domain.QuoteItem
	QuoteStatus        = domain.QuoteStatus
	SupplierResponse   = domain.SupplierResponse
	ResponseLine       = domain.ResponseLine
	Charges            = domain.Charges
	Attachment         = domain.Attachment
	PurchaseOrder      = domain.PurchaseOrder
	SparePart          = domain.SparePart
	Machine            = domain.Machine
	Assembly           = domain.Assembly
	SubAssembly        = domain.SubAssembly
	PartUsage          = domain.PartUsage
	SubAssemblyUsage   = domain.SubAssemblyUsage
	QuoteReview        = domain.QuoteReview
	Change             = domain.Change
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityRequest       = domain.EntityRequest
	EntityApproval      = domain.EntityApproval
	EntityQuote         = domain.EntityQuote
	EntityPurchaseOrder = domain.EntityPurchaseOrder
	EntitySparePart     = domain.EntitySparePart
	EntityMachine       = domain.EntityMachine
	EntityAssembly      = domain.EntityAssembly
	EntitySubAssembly   = domain.EntitySubAssembly
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
)
