package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"partpulse/pkg/domain"
)

type stockBody struct {
	Delta decimal.Decimal `json:"delta"`
}

// createEntity binds a catalogue entity, clears server-owned fields and
// hands it to create.
func createEntity[T any](s *Server, c *gin.Context, reset func(*T), create func(context.Context, T) (T, domain.Result, error)) {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	reset(&body)
	out, _, err := create(c.Request.Context(), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	created(c, out)
}

func listEntities[T any](s *Server, c *gin.Context, list func(context.Context) ([]T, error)) {
	out, err := list(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) createPart(c *gin.Context) {
	createEntity(s, c, func(p *domain.SparePart) { p.Base = domain.Base{} }, s.svc.CreateSparePart)
}

func (s *Server) createMachine(c *gin.Context) {
	createEntity(s, c, func(m *domain.Machine) { m.Base = domain.Base{} }, s.svc.CreateMachine)
}

func (s *Server) createSubAssembly(c *gin.Context) {
	createEntity(s, c, func(a *domain.SubAssembly) { a.Base = domain.Base{} }, s.svc.CreateSubAssembly)
}

func (s *Server) createAssembly(c *gin.Context) {
	createEntity(s, c, func(a *domain.Assembly) { a.Base = domain.Base{} }, s.svc.CreateAssembly)
}

func (s *Server) listParts(c *gin.Context)      { listEntities(s, c, s.svc.ListSpareParts) }
func (s *Server) listMachines(c *gin.Context)   { listEntities(s, c, s.svc.ListMachines) }
func (s *Server) listAssemblies(c *gin.Context) { listEntities(s, c, s.svc.ListAssemblies) }

func (s *Server) adjustStock(c *gin.Context) {
	var body stockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, CodeValidation, err.Error())
		return
	}
	out, _, err := s.svc.AdjustStock(c.Request.Context(), c.Param("id"), body.Delta)
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) assemblyBOM(c *gin.Context) {
	out, err := s.svc.AssemblyBOM(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}

func (s *Server) machineBOM(c *gin.Context) {
	out, err := s.svc.MachineBOM(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, out)
}
