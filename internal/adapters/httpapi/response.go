package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partpulse/internal/blob"
	"partpulse/pkg/domain"
)

// Response is the envelope every endpoint answers with. Code is 0 on success
// and otherwise the HTTP status times 100 plus a per-error offset.
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Error codes.
const (
	CodeValidation      = 40000
	CodeMissingComments = 40001
	CodeNoItems         = 40002
	CodeMissingActor    = 40003
	CodeNotFound        = 40400
	CodeAlreadyTerminal = 40900
	CodeDuplicate       = 40901
	CodeConcurrent      = 40902
	CodeInvalidMove     = 42200
	CodeInternal        = 50000
	CodeUnsupported     = 50100
	CodeUnavailable     = 50300
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

func badRequest(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: code, Message: message})
}

// errorMapping pairs a sentinel with its HTTP status and envelope code.
// Order matters: the first match wins.
var errorMapping = []struct {
	target error
	status int
	code   int
}{
	{domain.ErrValidation, http.StatusBadRequest, CodeValidation},
	{domain.ErrMissingComments, http.StatusBadRequest, CodeMissingComments},
	{domain.ErrNoItems, http.StatusBadRequest, CodeNoItems},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrAlreadyTerminal, http.StatusConflict, CodeAlreadyTerminal},
	{domain.ErrDuplicateApproval, http.StatusConflict, CodeDuplicate},
	{domain.ErrConcurrentModification, http.StatusConflict, CodeConcurrent},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity, CodeInvalidMove},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeUnavailable},
	{blob.ErrUnsupported, http.StatusNotImplemented, CodeUnsupported},
}

// statusFor maps a service error onto its HTTP status and envelope code.
func statusFor(err error) (int, int) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	resp := Response{Code: code, Message: err.Error(), Retryable: domain.Retryable(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Message = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
