package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"partpulse/internal/blob"
	"partpulse/pkg/domain"
)

// QuoteFilter narrows ListQuotes. Zero fields match everything.
type QuoteFilter struct {
	RequestID  string
	SupplierID string
	Status     domain.QuoteStatus
}

func (f QuoteFilter) matches(q QuoteRequest) bool {
	if f.RequestID != "" && (q.RequestID == nil || *q.RequestID != f.RequestID) {
		return false
	}
	if f.SupplierID != "" && q.SupplierID != f.SupplierID {
		return false
	}
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	return true
}

// ResponseInput is a supplier's priced answer to a quote request.
type ResponseInput struct {
	// UnitPrices is aligned with the quote items.
	UnitPrices       []decimal.Decimal
	Charges          Charges
	PromisedDelivery *time.Time
	PaymentTerms     string
	Attachments      []Attachment
	ExpectedVersion  *int64
}

// ReviewCommand approves or rejects a responded quote.
type ReviewCommand struct {
	QuoteID         string
	Reviewer        string
	Decision        domain.Decision
	Comments        string
	ExpectedVersion *int64
}

// OrderCommand turns an approved quote into a purchase order.
type OrderCommand struct {
	QuoteID string
	Actor   string
	Notes   string
}

func validateQuote(q QuoteRequest) error {
	if strings.TrimSpace(q.SupplierID) == "" {
		return domain.ValidationError{Field: "supplier_id", Reason: "required"}
	}
	if len(q.Items) == 0 {
		return domain.ValidationError{Field: "items", Reason: "at least one item required"}
	}
	for i, item := range q.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(item.Name) == "" && item.PartID == nil {
			return domain.ValidationError{Field: field + ".name", Reason: "name or part_id required"}
		}
		if !item.Quantity.IsPositive() {
			return domain.ValidationError{Field: field + ".quantity", Reason: "must be greater than zero"}
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return domain.ValidationError{Field: field + ".unit_price", Reason: "must not be negative"}
		}
	}
	return nil
}

func estimateQuote(items []QuoteItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.UnitPrice != nil {
			total = total.Add(item.Quantity.Mul(*item.UnitPrice).Round(2))
		}
	}
	return total
}

// CreateQuote opens a pending quote request with one supplier.
func (s *Service) CreateQuote(ctx context.Context, quote QuoteRequest) (QuoteRequest, Result, error) {
	if err := validateQuote(quote); err != nil {
		return QuoteRequest{}, Result{}, err
	}
	quote.Status = domain.QuoteStatusPending
	quote.Response = nil
	quote.Review = nil
	quote.OrderID = nil
	quote.EstimatedTotal = estimateQuote(quote.Items)
	var created QuoteRequest
	res, err := s.run(ctx, "create_quote", []zap.Field{zap.String("supplier_id", quote.SupplierID)}, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateQuote(quote)
		return err
	})
	return created, res, err
}

// mutateQuote runs fn under the quote's lock inside one transaction. fn
// receives the current stored quote.
func (s *Service) mutateQuote(ctx context.Context, operation, quoteID string, fields []zap.Field, fn func(tx domain.Transaction, current QuoteRequest) error) (Result, error) {
	started := time.Now()
	var res Result
	err := s.withEntityLock(ctx, lockKey(EntityQuote, quoteID), func() error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.Snapshot().FindQuote(quoteID)
			if !ok {
				return domain.NotFoundError{Entity: EntityQuote, ID: quoteID}
			}
			return fn(tx, current)
		})
		return err
	})
	s.observe(ctx, operation, started, append([]zap.Field{zap.String("quote_id", quoteID)}, fields...), err)
	return res, err
}

func expectedVersion(explicit *int64, current int64) int64 {
	if explicit != nil {
		return *explicit
	}
	return current
}

// RecordResponse prices a pending quote from the supplier's answer and moves
// it to responded. A quote accepts exactly one response.
func (s *Service) RecordResponse(ctx context.Context, quoteID string, in ResponseInput) (QuoteRequest, Result, error) {
	var updated QuoteRequest
	res, err := s.mutateQuote(ctx, "record_quote_response", quoteID, nil, func(tx domain.Transaction, current QuoteRequest) error {
		if err := quoteTransition(current.Status, "respond"); err != nil {
			return err
		}
		totals, err := ComputeTotals(current.Items, in.UnitPrices, in.Charges)
		if err != nil {
			return err
		}
		response := &SupplierResponse{
			Lines:              totals.Lines,
			Charges:            in.Charges,
			Subtotal:           totals.Subtotal,
			GrandTotal:         totals.GrandTotal,
			QuotedPricePerUnit: totals.QuotedPricePerUnit,
			PromisedDelivery:   in.PromisedDelivery,
			PaymentTerms:       strings.TrimSpace(in.PaymentTerms),
			Attachments:        append([]Attachment(nil), in.Attachments...),
			RespondedAt:        s.clock.Now(),
		}
		updated, err = tx.UpdateQuote(quoteID, expectedVersion(in.ExpectedVersion, current.Version), func(q *QuoteRequest) error {
			q.Status = domain.QuoteStatusResponded
			q.Response = response
			return nil
		})
		return err
	})
	return updated, res, err
}

// ReviewQuote records the reviewer's decision on a responded quote.
// Rejections must carry comments.
func (s *Service) ReviewQuote(ctx context.Context, cmd ReviewCommand) (QuoteRequest, Result, error) {
	if !cmd.Decision.Valid() {
		return QuoteRequest{}, Result{}, domain.ValidationError{Field: "decision", Reason: "unknown decision " + string(cmd.Decision)}
	}
	if strings.TrimSpace(cmd.Reviewer) == "" {
		return QuoteRequest{}, Result{}, domain.ValidationError{Field: "reviewer", Reason: "required"}
	}
	if cmd.Decision == domain.DecisionRejected && strings.TrimSpace(cmd.Comments) == "" {
		return QuoteRequest{}, Result{}, domain.ErrMissingComments
	}
	var updated QuoteRequest
	fields := []zap.Field{zap.String("decision", string(cmd.Decision))}
	res, err := s.mutateQuote(ctx, "review_quote", cmd.QuoteID, fields, func(tx domain.Transaction, current QuoteRequest) error {
		if err := quoteTransition(current.Status, "review"); err != nil {
			return err
		}
		next := domain.QuoteStatusApproved
		if cmd.Decision == domain.DecisionRejected {
			next = domain.QuoteStatusRejected
		}
		var err error
		updated, err = tx.UpdateQuote(cmd.QuoteID, expectedVersion(cmd.ExpectedVersion, current.Version), func(q *QuoteRequest) error {
			q.Status = next
			q.Review = &domain.QuoteReview{
				Reviewer:   cmd.Reviewer,
				Decision:   cmd.Decision,
				Comments:   strings.TrimSpace(cmd.Comments),
				ReviewedAt: s.clock.Now(),
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateOrder issues a purchase order from an approved quote and marks the
// quote ordered in the same transaction.
func (s *Service) CreateOrder(ctx context.Context, cmd OrderCommand) (PurchaseOrder, Result, error) {
	var order PurchaseOrder
	res, err := s.mutateQuote(ctx, "create_purchase_order", cmd.QuoteID, nil, func(tx domain.Transaction, current QuoteRequest) error {
		if err := quoteTransition(current.Status, "order"); err != nil {
			return err
		}
		if current.Response == nil {
			return domain.TransitionError{Entity: EntityQuote, From: string(current.Status), Action: "order", Cause: domain.ErrInvalidTransition}
		}
		var err error
		order, err = tx.CreatePurchaseOrder(PurchaseOrder{
			QuoteID:    current.ID,
			SupplierID: current.SupplierID,
			RequestID:  current.RequestID,
			Lines:      current.Response.Lines,
			Charges:    current.Response.Charges,
			Subtotal:   current.Response.Subtotal,
			GrandTotal: current.Response.GrandTotal,
			Notes:      strings.TrimSpace(cmd.Notes),
			CreatedBy:  cmd.Actor,
		})
		if err != nil {
			return err
		}
		_, err = tx.UpdateQuote(current.ID, current.Version, func(q *QuoteRequest) error {
			q.Status = domain.QuoteStatusOrdered
			orderID := order.ID
			q.OrderID = &orderID
			return nil
		})
		return err
	})
	return order, res, err
}

// AttachQuoteDocument stores a supplier document for quoteID in the blob
// store and returns a reference suitable for ResponseInput.Attachments.
func (s *Service) AttachQuoteDocument(ctx context.Context, quoteID, name, contentType string, r io.Reader) (Attachment, error) {
	started := time.Now()
	att, err := s.attachQuoteDocument(ctx, quoteID, name, contentType, r)
	s.observe(ctx, "attach_quote_document", started, []zap.Field{zap.String("quote_id", quoteID), zap.String("key", att.Key)}, err)
	return att, err
}

func (s *Service) attachQuoteDocument(ctx context.Context, quoteID, name, contentType string, r io.Reader) (Attachment, error) {
	if s.blobs == nil {
		return Attachment{}, fmt.Errorf("attach document: %w", blob.ErrUnsupported)
	}
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "" || base == "." || base == "/" || base == ".." {
		return Attachment{}, domain.ValidationError{Field: "name", Reason: "file name required"}
	}
	if err := s.store.View(ctx, func(v domain.TransactionView) error {
		if _, ok := v.FindQuote(quoteID); !ok {
			return domain.NotFoundError{Entity: EntityQuote, ID: quoteID}
		}
		return nil
	}); err != nil {
		return Attachment{}, err
	}
	key := path.Join("quotes", quoteID, uuid.NewString()+"-"+base)
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"quote_id": quoteID, "file_name": base},
	})
	if err != nil {
		if errors.Is(err, blob.ErrInvalidKey) {
			return Attachment{}, domain.ValidationError{Field: "name", Reason: err.Error()}
		}
		return Attachment{}, fmt.Errorf("%w: store attachment: %w", domain.ErrStoreUnavailable, err)
	}
	att := Attachment{Key: info.Key, Name: base, ContentType: contentType, Size: info.Size, URL: info.URL}
	url, err := s.blobs.PresignURL(ctx, info.Key, blob.SignedURLOptions{Expiry: s.presignExpiry})
	switch {
	case err == nil:
		att.URL = url
	case errors.Is(err, blob.ErrUnsupported):
	default:
		s.logger.Warn("presign attachment", zap.String("key", info.Key), zap.Error(err))
	}
	return att, nil
}

// BestQuoteFor returns the cheapest priced quote linked to requestID.
// ok is false when no linked quote has a response yet.
func (s *Service) BestQuoteFor(ctx context.Context, requestID string) (QuoteRequest, bool, error) {
	var best QuoteRequest
	var ok bool
	err := s.view(ctx, "best_quote", func(v domain.TransactionView) error {
		if _, found := v.FindRequest(requestID); !found {
			return domain.NotFoundError{Entity: EntityRequest, ID: requestID}
		}
		var linked []QuoteRequest
		filter := QuoteFilter{RequestID: requestID}
		for _, q := range v.ListQuotes() {
			if filter.matches(q) {
				linked = append(linked, q)
			}
		}
		best, ok = BestQuote(linked)
		return nil
	})
	return best, ok, err
}

// GetQuote returns a quote by id.
func (s *Service) GetQuote(ctx context.Context, id string) (QuoteRequest, error) {
	var out QuoteRequest
	err := s.view(ctx, "get_quote", func(v domain.TransactionView) error {
		q, ok := v.FindQuote(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityQuote, ID: id}
		}
		out = q
		return nil
	})
	return out, err
}

// ListQuotes returns quotes matching filter, oldest first.
func (s *Service) ListQuotes(ctx context.Context, filter QuoteFilter) ([]QuoteRequest, error) {
	var out []QuoteRequest
	err := s.view(ctx, "list_quotes", func(v domain.TransactionView) error {
		for _, q := range v.ListQuotes() {
			if filter.matches(q) {
				out = append(out, q)
			}
		}
		return nil
	})
	return out, err
}

// ListPurchaseOrders returns every issued purchase order.
func (s *Service) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	err := s.view(ctx, "list_purchase_orders", func(v domain.TransactionView) error {
		out = v.ListPurchaseOrders()
		return nil
	})
	return out, err
}
