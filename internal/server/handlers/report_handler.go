package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/domain/models"
	"github.com/mamadbah2/farmreports/internal/repository/sheets"
	"github.com/mamadbah2/farmreports/internal/service/reporting"
)

const defaultSnapshotLimit = 10

// ReportService is the reporting pipeline consumed by the HTTP layer.
type ReportService interface {
	Generate(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error)
	Categories(ctx context.Context, domain string) ([]string, error)
	Catalog() []reporting.CatalogEntry
}

// Exporter pushes a rendered report to an external sheet.
type Exporter interface {
	Export(ctx context.Context, report models.Report) (int, error)
}

// SnapshotLister reads stored digest snapshots.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, kind models.ReportKind, limit int64) ([]models.ReportSnapshot, error)
}

// ReportHandler exposes report generation over HTTP.
type ReportHandler struct {
	svc       ReportService
	exporter  Exporter
	snapshots SnapshotLister
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter. exporter and
// snapshots may be nil when the matching backends are not configured.
func NewReportHandler(svc ReportService, exporter Exporter, snapshots SnapshotLister, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, exporter: exporter, snapshots: snapshots, logger: logger}
}

// Generate builds the requested report.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid report request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Types lists the supported report identifiers.
func (h *ReportHandler) Types(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": h.svc.Catalog()})
}

// Categories lists the selectable categories of a domain. A failed load still
// answers with an empty list.
func (h *ReportHandler) Categories(c *gin.Context) {
	domain := c.Param("domain")
	if _, ok := models.ParseDomain(domain); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown domain"})
		return
	}

	categories, err := h.svc.Categories(c.Request.Context(), domain)
	if err != nil {
		h.logger.Warn("categories unavailable", zap.String("domain", domain), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"domain": domain, "categories": categories, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"domain": domain, "categories": categories})
}

// Export generates a report and appends it to the export sheet.
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "export is not configured"})
		return
	}

	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid export request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows, err := h.exporter.Export(c.Request.Context(), result.Report)
	if err != nil {
		if errors.Is(err, sheets.ErrEmptyReport) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": reporting.NoRecordsMessage})
			return
		}
		h.logger.Error("failed exporting report", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"kind": result.Report.Kind, "rows": rows})
}

// Snapshots lists the stored digest snapshots of a report.
func (h *ReportHandler) Snapshots(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshots are not configured"})
		return
	}

	kind, ok := models.ParseReportKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report type"})
		return
	}

	limit := int64(defaultSnapshotLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	snapshots, err := h.snapshots.ListSnapshots(c.Request.Context(), kind, limit)
	if err != nil {
		h.logger.Error("failed listing snapshots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to list snapshots"})
		return
	}
	if snapshots == nil {
		snapshots = []models.ReportSnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind, "snapshots": snapshots})
}

func (h *ReportHandler) respondError(c *gin.Context, err error) {
	var rerr *reporting.Error
	if !errors.As(err, &rerr) {
		h.logger.Error("report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to generate report"})
		return
	}

	status := http.StatusInternalServerError
	switch rerr.Kind {
	case reporting.KindInvalidReportType, reporting.KindInvalidDateRange:
		status = http.StatusBadRequest
	case reporting.KindDataLoad, reporting.KindCategoryLoad:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("report generation failed", zap.String("code", string(rerr.Code)), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": rerr.Message, "code": rerr.Code, "kind": rerr.Kind})
}
