package controller

import (
	"strconv"
	"time"

	"tutor_desk_backend/internal/service"
	"tutor_desk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	PaymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{PaymentService: paymentService}
}

// @Summary List a student's payment records
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param id path int true "student id"
// @Success 200 {object} util.Response
// @Router /students/{id}/payments [get]
func (c *PaymentController) ListForStudent(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	records, err := c.PaymentService.ListForStudent(uint(id))
	if err != nil {
		if err == util.ErrStudentNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

type markPaidRequest struct {
	Period string  `json:"period" binding:"required"` // "2006-01"
	Amount float64 `json:"amount"`
}

// @Summary Mark a period paid and resolve matching overdue alerts
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "student id"
// @Param body body markPaidRequest true "period"
// @Success 200 {object} util.Response
// @Router /students/{id}/payments/paid [post]
func (c *PaymentController) MarkPaid(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req markPaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.PaymentService.MarkPaid(uint(id), req.Period, req.Amount, time.Now())
	if err != nil {
		if err == util.ErrStudentNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, record)
}
