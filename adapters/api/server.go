// Package api exposes the validation engine over HTTP.
package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sefval/app"
	"sefval/ports"
)

// Server hosts the validation API.
type Server struct {
	router  *gin.Engine
	service *app.ValidationService
	reports ports.ReportRepository
	source  ports.SampleSource
}

// NewServer wires the HTTP surface. The sample source is optional; when nil
// the source-backed run endpoint responds 503.
func NewServer(service *app.ValidationService, reports ports.ReportRepository, source ports.SampleSource, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
		reports: reports,
		source:  source,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	s.router.POST("/api/validate", s.handleValidate)
	s.router.POST("/api/validate/source", s.handleValidateSource)
	s.router.GET("/api/reports", s.handleListReports)
	s.router.GET("/api/reports/:id", s.handleGetReport)
	s.router.GET("/reports/:id", s.handleReportHTML)
}

// Run starts the server on the given address and blocks.
func (s *Server) Run(addr string) error {
	log.Printf("[API] listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// runAndPersist executes one validation run and saves the report when a
// repository is configured.
func (s *Server) runAndPersist(ctx context.Context, req app.ValidationRequest) (*gin.H, int, error) {
	rep, err := s.service.Run(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	if s.reports != nil {
		if err := s.reports.Save(ctx, rep); err != nil {
			// The run itself succeeded; report the result with the
			// persistence failure attached.
			log.Printf("[API] failed to persist report %s: %v", rep.ID, err)
			return &gin.H{"report": rep, "persisted": false}, http.StatusOK, nil
		}
	}
	return &gin.H{"report": rep, "persisted": s.reports != nil}, http.StatusOK, nil
}
