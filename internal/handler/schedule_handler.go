package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Teo-Te/ClassSync-sub001/internal/dto"
	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
	"github.com/Teo-Te/ClassSync-sub001/pkg/response"
)

type scheduleService interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*models.GeneratedSchedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.GeneratedSchedule, error)
	Delete(ctx context.Context, id string) error
	Timetable(ctx context.Context, id string, scope models.TimetableScope, targetID string) (*dto.TimetableResponse, error)
}

type scheduleOptimizer interface {
	Optimize(ctx context.Context, scheduleID string, req dto.OptimizeScheduleRequest) (*models.GeneratedSchedule, error)
}

// ScheduleHandler exposes schedule generation and the stored schedule surface.
type ScheduleHandler struct {
	schedules scheduleService
	optimizer scheduleOptimizer
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules scheduleService, optimizer scheduleOptimizer) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, optimizer: optimizer}
}

// Generate godoc
// @Summary Generate a schedule from the current entity snapshot
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest false "Generation options"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	schedule, err := h.schedules.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// List godoc
// @Summary List stored schedules
// @Tags Schedules
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,score,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get a stored schedule with sessions and conflicts
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a stored schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Optimize godoc
// @Summary Run an optimizer pass over a stored schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.OptimizeScheduleRequest true "Optimization request"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/optimize [post]
func (h *ScheduleHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.optimizer.Optimize(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Timetable godoc
// @Summary Get a schedule arranged by weekday, optionally narrowed to one entity
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param scope query string false "Scope (all/class/teacher/room)"
// @Param targetId query string false "Entity id for scoped views"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/timetable [get]
func (h *ScheduleHandler) Timetable(c *gin.Context) {
	scope := models.TimetableScope(c.DefaultQuery("scope", string(models.TimetableScopeAll)))
	timetable, err := h.schedules.Timetable(c.Request.Context(), c.Param("id"), scope, c.Query("targetId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}
