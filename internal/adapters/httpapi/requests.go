package httpapi

import (
	"github.com/gin-gonic/gin"

	"partpulse/internal/core"
	"partpulse/pkg/domain"
)

type createRequestBody struct {
	BuildingID  string               `json:"building_id"`
	Priority    domain.Priority      `json:"priority"`
	Description string               `json:"description"`
	Notes       string               `json:"notes"`
	Items       []domain.RequestItem `json:"items"`
	// Submit creates the request directly in SUBMITTED.
	Submit bool `json:"submit"`
}

type decisionBody struct {
	// Role is optional; when the X-Actor-Role header is set it must agree.
	Role            domain.Role     `json:"role"`
	Decision        domain.Decision `json:"decision"`
	Comments        string          `json:"comments"`
	ExpectedVersion *int64          `json:"expected_version"`
}

func (s *Server) createRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	req := domain.Request{
		BuildingID:  body.BuildingID,
		Priority:    body.Priority,
		Description: body.Description,
		Notes:       body.Notes,
		Items:       body.Items,
		SubmittedBy: actorID(c),
	}
	create := s.svc.CreateRequest
	if body.Submit {
		create = s.svc.SubmitNew
	}
	out, _, err := create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, out)
}

func (s *Server) listRequests(c *gin.Context) {
	out, err := s.svc.ListRequests(c.Request.Context(), core.RequestFilter{
		Status:     domain.RequestStatus(c.Query("status")),
		BuildingID: c.Query("building_id"),
		Priority:   domain.Priority(c.Query("priority")),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) getRequest(c *gin.Context) {
	out, err := s.svc.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) requestHistory(c *gin.Context) {
	out, err := s.svc.RequestHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) listApprovals(c *gin.Context) {
	out, err := s.svc.ApprovalsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) submitRequest(c *gin.Context) {
	out, _, err := s.svc.Submit(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) decideRequest(c *gin.Context) {
	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	role := actorRole(c)
	switch {
	case role == "":
		role = body.Role
	case body.Role != "" && body.Role != role:
		badRequest(c, CodeValidation, "role in body does not match "+HeaderActorRole)
		return
	}
	out, _, err := s.svc.Decide(c.Request.Context(), core.DecideCommand{
		RequestID:       c.Param("id"),
		Role:            role,
		Actor:           actorID(c),
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

func (s *Server) executeRequest(c *gin.Context) {
	out, _, err := s.svc.Execute(c.Request.Context(), c.Param("id"), actorRole(c), actorID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) bestQuote(c *gin.Context) {
	quote, ok, err := s.svc.BestQuoteFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		success(c, gin.H{"found": false})
		return
	}
	success(c, gin.H{"found": true, "quote": quote})
}
