package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
	"github.com/mamadbah2/salesdesk/internal/service/export"
	"github.com/mamadbah2/salesdesk/internal/service/notify"
	"github.com/mamadbah2/salesdesk/internal/service/reporting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the dashboard, reports, exports and notifications.
type ReportHandler struct {
	reports *reporting.Service
	exports *export.Service
	notify  *notify.Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(reports *reporting.Service, exports *export.Service, notifier *notify.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, exports: exports, notify: notifier, logger: logger, now: time.Now}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ReportHandler) Clients(c *gin.Context) {
	report, err := h.reports.ClientReport(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportCSV downloads every sale line as CSV.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	h.download(c, "csv", "text/csv", h.exports.WriteCSV)
}

// ExportXLSX downloads every sale line as an Excel workbook.
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	h.download(c, "xlsx", xlsxContentType, h.exports.WriteXLSX)
}

// download renders into memory first so a failure still gets a JSON error.
func (h *ReportHandler) download(c *gin.Context, ext, contentType string, write func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := write(c.Request.Context(), &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.exports.FileName(h.now(), ext)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// SyncSheet rewrites the Google Sheet export now.
func (h *ReportHandler) SyncSheet(c *gin.Context) {
	n, err := h.exports.SyncSheet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": n})
}

// SendDigest delivers the weekly digest now.
func (h *ReportHandler) SendDigest(c *gin.Context) {
	result, err := h.notify.SendDigest(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// SendMessage allows sending manual notifications.
func (h *ReportHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	if err := h.notify.SendOutbound(c.Request.Context(), req); err != nil {
		if errors.Is(err, notify.ErrDisabled) {
			respondError(c, h.logger, err)
			return
		}
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
