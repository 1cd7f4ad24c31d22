package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/service"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
	"github.com/sma-engine/masterschedule/pkg/response"
)

// RunHandler exposes the generate/commit/inspect lifecycle for master
// schedule runs.
type RunHandler struct {
	runs *service.RunService
}

// NewRunHandler constructs RunHandler.
func NewRunHandler(runs *service.RunService) *RunHandler {
	return &RunHandler{runs: runs}
}

// Generate godoc
// @Summary Build an in-memory schedule proposal
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRunRequest true "Generation request"
// @Success 201 {object} response.Envelope
// @Router /runs [post]
func (h *RunHandler) Generate(c *gin.Context) {
	var req dto.GenerateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	createdBy := ""
	if claims := claimsFromContext(c); claims != nil {
		createdBy = claims.UserID
	}
	resp, err := h.runs.Generate(c.Request.Context(), req, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Commit godoc
// @Summary Persist a previously generated proposal
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body dto.CommitRunRequest true "Commit request"
// @Success 200 {object} response.Envelope
// @Router /runs/commit [post]
func (h *RunHandler) Commit(c *gin.Context) {
	var req dto.CommitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	runID, err := h.runs.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"runId": runID}, nil)
}

// List godoc
// @Summary List runs
// @Tags Runs
// @Produce json
// @Param status query string false "Filter by status (DRAFT,COMMITTED)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	var query dto.RunListQuery
	query.Status = c.Query("status")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "20")); err == nil {
		query.PageSize = size
	}

	runs, total, err := h.runs.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, paginationFromQuery(query, total))
}

// GetSections godoc
// @Summary List a run's persisted sections
// @Tags Runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /runs/{id}/sections [get]
func (h *RunHandler) GetSections(c *gin.Context) {
	sections, err := h.runs.GetSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// GetSummary godoc
// @Summary Get a committed run's report summary
// @Tags Runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /runs/{id}/summary [get]
func (h *RunHandler) GetSummary(c *gin.Context) {
	summary, err := h.runs.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Delete godoc
// @Summary Soft-delete a run
// @Tags Runs
// @Param id path string true "Run ID"
// @Success 204
// @Router /runs/{id} [delete]
func (h *RunHandler) Delete(c *gin.Context) {
	if err := h.runs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func paginationFromQuery(query dto.RunListQuery, total int) *models.Pagination {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
