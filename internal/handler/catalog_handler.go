package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/service"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
	"github.com/sma-engine/masterschedule/pkg/response"
)

// CatalogHandler exposes bulk roster import for teachers, students,
// courses, and rooms.
type CatalogHandler struct {
	imports *service.CatalogImportService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(imports *service.CatalogImportService) *CatalogHandler {
	return &CatalogHandler{imports: imports}
}

// Import godoc
// @Summary Import a catalog batch
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CatalogImportRequest true "Catalog import batch"
// @Success 200 {object} response.Envelope
// @Router /catalog/import [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	var req dto.CatalogImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid catalog import payload"))
		return
	}

	result, err := h.imports.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
