package controller

import (
	"time"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/service"
	"tutor_desk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SuggestionController struct {
	Queue             *service.QueueService
	SuggestionService *service.SuggestionService
}

func NewSuggestionController(queue *service.QueueService, suggestionService *service.SuggestionService) *SuggestionController {
	return &SuggestionController{
		Queue:             queue,
		SuggestionService: suggestionService,
	}
}

// @Summary Get the single suggestion to display, if any
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /suggestions/current [get]
func (c *SuggestionController) Current(ctx *gin.Context) {
	util.Success(ctx, gin.H{"suggestion": c.Queue.Current()})
}

// @Summary List the pending working set
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /suggestions [get]
func (c *SuggestionController) List(ctx *gin.Context) {
	util.Success(ctx, c.Queue.Pending())
}

// @Summary List dismissal history, newest first
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /suggestions/history [get]
func (c *SuggestionController) History(ctx *gin.Context) {
	util.Success(ctx, c.Queue.History())
}

// @Summary Dismiss a suggestion manually
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Param id path string true "suggestion id"
// @Success 200 {object} util.Response
// @Router /suggestions/{id}/dismiss [post]
func (c *SuggestionController) Dismiss(ctx *gin.Context) {
	if err := c.Queue.MarkDismissed(ctx.Param("id")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Mark a suggestion actioned and return its parsed command
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Param id path string true "suggestion id"
// @Success 200 {object} util.Response
// @Router /suggestions/{id}/action [post]
func (c *SuggestionController) Action(ctx *gin.Context) {
	taken, err := c.Queue.MarkActioned(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	// The client's action router executes the command; the core only
	// hands it over.
	verb, params := model.ParseAction(taken.Action)
	util.Success(ctx, gin.H{"action": taken.Action, "verb": verb, "params": params})
}

type resolveRequest struct {
	ConditionKey string `json:"conditionKey"`
	EntityType   string `json:"entityType"`
	EntityID     string `json:"entityId"`
}

// @Summary Batch-resolve suggestions whose underlying fact was fixed
// @Tags suggestions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body resolveRequest true "condition key or entity reference"
// @Success 200 {object} util.Response
// @Router /suggestions/resolve [post]
func (c *SuggestionController) Resolve(ctx *gin.Context) {
	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var resolved int
	switch {
	case req.ConditionKey != "":
		resolved = c.Queue.ResolveByCondition(req.ConditionKey)
	case req.EntityType != "" && req.EntityID != "":
		resolved = c.Queue.ResolveByEntity(req.EntityType, req.EntityID)
	default:
		util.BadRequest(ctx, "conditionKey or entityType+entityId required")
		return
	}
	util.Success(ctx, gin.H{"resolved": resolved})
}

// @Summary Force an engine pass now
// @Tags suggestions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /suggestions/refresh [post]
func (c *SuggestionController) Refresh(ctx *gin.Context) {
	interrupt, err := c.SuggestionService.Refresh(time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"interrupt": interrupt, "current": c.Queue.Current()})
}
