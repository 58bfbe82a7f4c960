package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursegrid/solver-api/internal/dto"
	"github.com/coursegrid/solver-api/internal/middleware"
	"github.com/coursegrid/solver-api/internal/models"
	"github.com/coursegrid/solver-api/internal/service"
	appErrors "github.com/coursegrid/solver-api/pkg/errors"
	"github.com/coursegrid/solver-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ListRuns(ctx context.Context, query dto.SolveRunQuery) ([]dto.SolveRunSummary, models.Pagination, error)
	GetRun(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
	DeleteRun(ctx context.Context, id string) error
}

// ScheduleGeneratorHandler exposes timetable generation and history endpoints.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate a feasible weekly timetable
// @Description Runs the constraint solver against the supplied week shape, subjects and rooms, and returns the resulting union-typed outcome.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	ctx, hit := service.WithCacheHitSink(c.Request.Context())
	result, err := h.service.Generate(ctx, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, *hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// List godoc
// @Summary List solve-run history
// @Tags Timetable
// @Produce json
// @Param status query string false "Filter by outcome status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *ScheduleGeneratorHandler) List(c *gin.Context) {
	query := dto.SolveRunQuery{
		Status:   c.Query("status"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
	summaries, pagination, err := h.service.ListRuns(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, &pagination)
}

// Get godoc
// @Summary Fetch a persisted solve run
// @Tags Timetable
// @Produce json
// @Param id path string true "Solve run ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *ScheduleGeneratorHandler) Get(c *gin.Context) {
	result, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a persisted solve run
// @Tags Timetable
// @Param id path string true "Solve run ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *ScheduleGeneratorHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
