package httpapi

import "github.com/gin-gonic/gin"

func (s *Server) pendingCounts(c *gin.Context) {
	out, err := s.svc.PendingCounts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) budgetSummary(c *gin.Context) {
	out, err := s.svc.BudgetSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) quoteSummary(c *gin.Context) {
	out, err := s.svc.QuoteSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) lowStock(c *gin.Context) {
	out, err := s.svc.LowStock(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}
