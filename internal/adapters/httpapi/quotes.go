package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"partpulse/internal/core"
	"partpulse/pkg/domain"
)

type createQuoteBody struct {
	SupplierID   string             `json:"supplier_id"`
	SupplierName string             `json:"supplier_name"`
	RequestID    *string            `json:"request_id"`
	Items        []domain.QuoteItem `json:"items"`
	RequestNotes string             `json:"request_notes"`
}

type responseBody struct {
	UnitPrices       []decimal.Decimal   `json:"unit_prices"`
	Charges          domain.Charges      `json:"charges"`
	PromisedDelivery *time.Time          `json:"promised_delivery"`
	PaymentTerms     string              `json:"payment_terms"`
	Attachments      []domain.Attachment `json:"attachments"`
	ExpectedVersion  *int64              `json:"expected_version"`
}

type reviewBody struct {
	Decision        domain.Decision `json:"decision"`
	Comments        string          `json:"comments"`
	ExpectedVersion *int64          `json:"expected_version"`
}

type orderBody struct {
	Notes string `json:"notes"`
}

func (s *Server) createQuote(c *gin.Context) {
	var body createQuoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	out, _, err := s.svc.CreateQuote(c.Request.Context(), domain.QuoteRequest{
		SupplierID:   body.SupplierID,
		SupplierName: body.SupplierName,
		RequestID:    body.RequestID,
		Items:        body.Items,
		RequestNotes: body.RequestNotes,
		CreatedBy:    actorID(c),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) listQuotes(c *gin.Context) {
	out, err := s.svc.ListQuotes(c.Request.Context(), core.QuoteFilter{
		RequestID:  c.Query("request_id"),
		SupplierID: c.Query("supplier_id"),
		Status:     domain.QuoteStatus(c.Query("status")),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) getQuote(c *gin.Context) {
	out, err := s.svc.GetQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) recordResponse(c *gin.Context) {
	var body responseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	out, _, err := s.svc.RecordResponse(c.Request.Context(), c.Param("id"), core.ResponseInput{
		UnitPrices:       body.UnitPrices,
		Charges:          body.Charges,
		PromisedDelivery: body.PromisedDelivery,
		PaymentTerms:     body.PaymentTerms,
		Attachments:      body.Attachments,
		ExpectedVersion:  body.ExpectedVersion,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) reviewQuote(c *gin.Context) {
	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	out, _, err := s.svc.ReviewQuote(c.Request.Context(), core.ReviewCommand{
		QuoteID:         c.Param("id"),
		Reviewer:        actorID(c),
		Decision:        body.Decision,
		Comments:        body.Comments,
		ExpectedVersion: body.ExpectedVersion,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) createOrder(c *gin.Context) {
	var body orderBody
	// An empty body is allowed.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, CodeValidation, err.Error())
			return
		}
	}
	out, _, err := s.svc.CreateOrder(c.Request.Context(), core.OrderCommand{
		QuoteID: c.Param("id"),
		Actor:   actorID(c),
		Notes:   body.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, out)
}

// attachDocument stores the multipart "file" field against the quote.
func (s *Server) attachDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, CodeValidation, "multipart field \"file\" is required")
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	defer func() { _ = f.Close() }()

	att, err := s.svc.AttachQuoteDocument(c.Request.Context(), c.Param("id"), header.Filename, header.Header.Get("Content-Type"), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, att)
}

func (s *Server) listPurchaseOrders(c *gin.Context) {
	out, err := s.svc.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}
