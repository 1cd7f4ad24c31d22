package handler

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/service"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
	"github.com/sma-engine/masterschedule/pkg/response"
)

// ReportHandler exposes the committed-run report export/download endpoints.
type ReportHandler struct {
	exports *service.ReportExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(exports *service.ReportExportService) *ReportHandler {
	return &ReportHandler{exports: exports}
}

// Export godoc
// @Summary Render a committed run's report to CSV or PDF
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param payload body dto.ExportReportRequest true "Export format"
// @Success 200 {object} response.Envelope
// @Router /runs/{id}/report/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a previously exported report
// @Tags Reports
// @Produce application/octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} file
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, filename, err := h.exports.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(filename)+`"`)
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stream report"))
	}
}
