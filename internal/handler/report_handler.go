package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/TravisChandler1/ewaede/internal/service"
	"github.com/TravisChandler1/ewaede/pkg/response"
)

// ReportHandler streams admin exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Users godoc
// @Summary Export users
// @Description Download the user roster as CSV or PDF (admin only)
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/reports/users [get]
func (h *ReportHandler) Users(c *gin.Context) {
	report, err := h.service.Users(c.Request.Context(), service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, report)
}

// Applications godoc
// @Summary Export teacher applications
// @Description Download teacher applications as CSV or PDF (admin only)
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/reports/applications [get]
func (h *ReportHandler) Applications(c *gin.Context) {
	report, err := h.service.Applications(c.Request.Context(), service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, report)
}

func (h *ReportHandler) stream(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(200, report.ContentType, report.Data)
}
