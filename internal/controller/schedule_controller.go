package controller

import (
	"strconv"
	"time"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/service"
	"tutor_desk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScheduleController struct {
	ScheduleService   *service.ScheduleService
	SuggestionService *service.SuggestionService
}

func NewScheduleController(scheduleService *service.ScheduleService, suggestionService *service.SuggestionService) *ScheduleController {
	return &ScheduleController{
		ScheduleService:   scheduleService,
		SuggestionService: suggestionService,
	}
}

type candidateRequest struct {
	Date             string `json:"date" binding:"required"` // "2006-01-02"
	StartTime        string `json:"startTime" binding:"required"`
	DurationMinutes  int    `json:"durationMinutes"`
	ExcludeSessionID uint   `json:"excludeSessionId"`
}

func (r *candidateRequest) toCandidate() (model.SessionCandidate, error) {
	date, err := time.ParseInLocation(util.DateFormat, r.Date, time.Local)
	if err != nil {
		return model.SessionCandidate{}, err
	}
	return model.SessionCandidate{
		Date:             date,
		StartTime:        r.StartTime,
		DurationMinutes:  r.DurationMinutes,
		ExcludeSessionID: r.ExcludeSessionID,
	}, nil
}

// @Summary Validate a candidate session time against the roster
// @Tags schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param candidate body candidateRequest true "candidate"
// @Success 200 {object} util.Response
// @Router /schedule/validate [post]
func (c *ScheduleController) Validate(ctx *gin.Context) {
	var req candidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	candidate, err := req.toCandidate()
	if err != nil {
		util.BadRequest(ctx, "invalid date")
		return
	}

	result, err := c.ScheduleService.Validate(candidate)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"conflict": result})
}

// @Summary Suggest conflict-free slots for a day
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param date query string true "day (2006-01-02)"
// @Param duration query int false "duration minutes"
// @Param start query string false "range start (HH:MM)"
// @Param end query string false "range end (HH:MM)"
// @Param max query int false "max slots"
// @Success 200 {object} util.Response
// @Router /schedule/slots [get]
func (c *ScheduleController) SuggestedSlots(ctx *gin.Context) {
	date, err := time.ParseInLocation(util.DateFormat, ctx.Query("date"), time.Local)
	if err != nil {
		util.BadRequest(ctx, "invalid date")
		return
	}
	duration, _ := strconv.Atoi(ctx.DefaultQuery("duration", "0"))
	maxCount, _ := strconv.Atoi(ctx.DefaultQuery("max", "5"))
	rangeStart := ctx.DefaultQuery("start", "08:00")
	rangeEnd := ctx.DefaultQuery("end", "20:00")

	slots, err := c.ScheduleService.SuggestedSlots(date, duration, rangeStart, rangeEnd, maxCount)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, slots)
}

type sessionRequest struct {
	StudentID       uint   `json:"studentId" binding:"required"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Topic           string `json:"topic"`
	Notes           string `json:"notes"`
	Status          string `json:"status"`
}

// @Summary Create a session after pre-insert validation
// @Tags schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param session body sessionRequest true "session"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "error-severity conflict"
// @Router /sessions [post]
func (c *ScheduleController) CreateSession(ctx *gin.Context) {
	var req sessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	date, err := time.ParseInLocation(util.DateFormat, req.Date, time.Local)
	if err != nil {
		util.BadRequest(ctx, "invalid date")
		return
	}

	session := &model.Session{
		StudentID:       req.StudentID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Topic:           req.Topic,
		Notes:           req.Notes,
		Status:          model.SessionStatus(req.Status),
	}

	result, err := c.ScheduleService.CreateSession(session)
	switch err {
	case nil:
		c.refreshSuggestions()
		util.Created(ctx, gin.H{"session": session, "conflict": result})
	case util.ErrScheduleConflict:
		util.Conflict(ctx, gin.H{"conflict": result})
	case util.ErrStudentNotFound:
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary Cancel a scheduled session
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Router /sessions/{id}/cancel [post]
func (c *ScheduleController) CancelSession(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	outcome, err := c.ScheduleService.CancelSession(uint(id), time.Now())
	switch err {
	case nil:
		c.refreshSuggestions()
		util.Success(ctx, outcome)
	case util.ErrSessionNotFound:
		util.NotFound(ctx)
	case util.ErrSessionNotScheduled:
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary Restore a cancelled or vacation session after revalidation
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "error-severity conflict"
// @Router /sessions/{id}/restore [post]
func (c *ScheduleController) RestoreSession(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	result, err := c.ScheduleService.RestoreSession(uint(id))
	switch err {
	case nil:
		c.refreshSuggestions()
		util.Success(ctx, gin.H{"conflict": result})
	case util.ErrScheduleConflict:
		util.Conflict(ctx, gin.H{"conflict": result})
	case util.ErrSessionNotFound:
		util.NotFound(ctx)
	case util.ErrSessionNotRestorable:
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary Confirm (complete) a scheduled session
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Router /sessions/{id}/confirm [post]
func (c *ScheduleController) ConfirmSession(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	session, err := c.ScheduleService.ConfirmSession(uint(id))
	switch err {
	case nil:
		c.refreshSuggestions()
		util.Success(ctx, session)
	case util.ErrSessionNotFound:
		util.NotFound(ctx)
	case util.ErrSessionNotScheduled:
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// refreshSuggestions runs an engine pass after a data change so the queue
// catches up without waiting for the next tick. Best-effort.
func (c *ScheduleController) refreshSuggestions() {
	if c.SuggestionService != nil {
		_, _ = c.SuggestionService.Refresh(time.Now())
	}
}
