// Package httpapi exposes the procurement service over JSON/HTTP with gin.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"partpulse/internal/core"
)

// Options configures the router.
type Options struct {
	// CORSOrigins lists allowed origins; empty or "*" allows all.
	CORSOrigins []string
	// Gatherer backs /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
	// Logger receives access and error logs. Nil discards them.
	Logger *zap.Logger
	// ReadyTimeout bounds the store probe behind /health/ready.
	ReadyTimeout time.Duration
}

// Server routes HTTP requests to a core.Service.
type Server struct {
	svc          *core.Service
	logger       *zap.Logger
	gatherer     prometheus.Gatherer
	readyTimeout time.Duration
	engine       *gin.Engine
}

// New builds the router. gin's mode is left to the caller.
func New(svc *core.Service, opts Options) *Server {
	s := &Server{
		svc:          svc,
		logger:       opts.Logger,
		gatherer:     opts.Gatherer,
		readyTimeout: opts.ReadyTimeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.readyTimeout <= 0 {
		s.readyTimeout = 2 * time.Second
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(actor())
	r.Use(accessLog(s.logger))
	r.Use(corsMiddleware(opts.CORSOrigins))
	s.routes(r)
	s.engine = r
	return s
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health/live", s.live)
	r.GET("/health/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	write := requireActor()

	requests := api.Group("/requests")
	requests.POST("", write, s.createRequest)
	requests.GET("", s.listRequests)
	requests.GET("/:id", s.getRequest)
	requests.GET("/:id/history", s.requestHistory)
	requests.GET("/:id/approvals", s.listApprovals)
	requests.GET("/:id/best-quote", s.bestQuote)
	requests.POST("/:id/submit", write, s.submitRequest)
	requests.POST("/:id/decisions", write, s.decideRequest)
	requests.POST("/:id/execute", write, s.executeRequest)

	quotes := api.Group("/quotes")
	quotes.POST("", write, s.createQuote)
	quotes.GET("", s.listQuotes)
	quotes.GET("/:id", s.getQuote)
	quotes.POST("/:id/response", write, s.recordResponse)
	quotes.POST("/:id/review", write, s.reviewQuote)
	quotes.POST("/:id/order", write, s.createOrder)
	quotes.POST("/:id/attachments", write, s.attachDocument)

	api.GET("/purchase-orders", s.listPurchaseOrders)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/pending", s.pendingCounts)
	dashboard.GET("/budget", s.budgetSummary)
	dashboard.GET("/quotes", s.quoteSummary)
	dashboard.GET("/low-stock", s.lowStock)

	catalogue := api.Group("/catalogue")
	catalogue.POST("/parts", write, s.createPart)
	catalogue.GET("/parts", s.listParts)
	catalogue.POST("/parts/:id/stock", write, s.adjustStock)
	catalogue.POST("/machines", write, s.createMachine)
	catalogue.GET("/machines", s.listMachines)
	catalogue.GET("/machines/:id/bom", s.machineBOM)
	catalogue.POST("/sub-assemblies", write, s.createSubAssembly)
	catalogue.POST("/assemblies", write, s.createAssembly)
	catalogue.GET("/assemblies", s.listAssemblies)
	catalogue.GET("/assemblies/:id/bom", s.assemblyBOM)
}

func (s *Server) live(c *gin.Context) {
	success(c, gin.H{"status": "ok"})
}

// ready probes the store with a read-only view.
func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.readyTimeout)
	defer cancel()
	if _, err := s.svc.PendingCounts(ctx); err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, Response{Code: CodeUnavailable, Message: err.Error()})
		return
	}
	success(c, gin.H{"status": "ready"})
}
