package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sefval/app"
	"sefval/domain/core"
	"sefval/domain/report"
)

// handleValidate runs validation over samples supplied inline in the body.
func (s *Server) handleValidate(c *gin.Context) {
	var payload validatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.respondRun(c, req)
}

// handleValidateSource runs validation over samples loaded from the
// configured sample source (workbook or table).
func (s *Server) handleValidateSource(c *gin.Context) {
	if s.source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no sample source configured"})
		return
	}

	samples, err := s.source.Samples(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var opts struct {
		Sensitivity *sensitivityPayload `json:"sensitivity,omitempty"`
		Seed        *int64              `json:"seed,omitempty"`
	}
	// The body is optional for source-backed runs.
	_ = c.ShouldBindJSON(&opts)

	req := app.ValidationRequest{Samples: samples, Seed: opts.Seed}
	if opts.Sensitivity != nil {
		req.Sensitivity = &app.SensitivitySpec{
			BaselineKappa: opts.Sensitivity.BaselineKappa,
			BaselineRho:   opts.Sensitivity.BaselineRho,
			KappaRange:    opts.Sensitivity.KappaRange,
			RhoRange:      opts.Sensitivity.RhoRange,
		}
	}

	s.respondRun(c, req)
}

func (s *Server) respondRun(c *gin.Context, req app.ValidationRequest) {
	body, status, err := s.runAndPersist(c.Request.Context(), req)
	if err != nil {
		if core.IsConfigurationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, body)
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report store configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	reports, err := s.reports.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleGetReport(c *gin.Context) {
	rep, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// handleReportHTML renders the report summary as HTML for browsers.
func (s *Server) handleReportHTML(c *gin.Context) {
	rep, ok := s.loadReport(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", RenderHTML(rep))
}

func (s *Server) loadReport(c *gin.Context) (*report.ValidationReport, bool) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report store configured"})
		return nil, false
	}

	id, err := core.ParseReportID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	found, err := s.reports.GetByID(c.Request.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return found, true
}
