package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursegrid/solver-api/internal/service"
	appErrors "github.com/coursegrid/solver-api/pkg/errors"
	"github.com/coursegrid/solver-api/pkg/response"
)

type exportDispatcher interface {
	Dispatch(ctx context.Context, solveRunID string, format service.ReportFormat) (*service.ExportResult, error)
}

type exportDownloader interface {
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
}

// ExportHandler renders a stored solve run to CSV/PDF and serves signed downloads.
// Rendering itself runs on the export worker pool so a slow PDF never ties up
// the request goroutine.
type ExportHandler struct {
	dispatcher exportDispatcher
	service    exportDownloader
}

// NewExportHandler constructs the handler.
func NewExportHandler(dispatcher *service.ExportDispatcher, svc *service.ExportService) *ExportHandler {
	return &ExportHandler{dispatcher: dispatcher, service: svc}
}

// Generate godoc
// @Summary Render a solve run's timetable to CSV or PDF
// @Tags Timetable
// @Produce json
// @Param id path string true "Solve run ID"
// @Param format query string true "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *ExportHandler) Generate(c *gin.Context) {
	format := service.ReportFormat(c.Query("format"))
	if format != service.ReportFormatCSV && format != service.ReportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	result, err := h.dispatcher.Dispatch(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        result.URL,
		"format":     result.Format,
		"expires_at": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a rendered export by signed token
// @Tags Timetable
// @Param token path string true "Signed export token"
// @Success 200 {file} file
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Param("token")
	_, relPath, _, err := h.service.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired export token"))
		return
	}
	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", "attachment")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
