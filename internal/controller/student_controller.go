package controller

import (
	"strconv"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/service"
	"tutor_desk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

// @Summary Add a student
// @Tags students
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param student body model.Student true "student"
// @Success 201 {object} util.Response
// @Router /students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	var student model.Student
	if err := ctx.ShouldBindJSON(&student); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.StudentService.Create(&student); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// @Summary Update a student
// @Tags students
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "student id"
// @Param student body model.Student true "student"
// @Success 200 {object} util.Response
// @Router /students/{id} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var updates model.Student
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.Update(uint(id), &updates)
	if err != nil {
		if err == util.ErrStudentNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// @Summary Get a student with sessions
// @Tags students
// @Security BearerAuth
// @Produce json
// @Param id path int true "student id"
// @Success 200 {object} util.Response
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	student, err := c.StudentService.Get(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, student)
}

// @Summary List students
// @Tags students
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /students [get]
func (c *StudentController) List(ctx *gin.Context) {
	students, err := c.StudentService.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// @Summary Remove a student and their sessions
// @Tags students
// @Security BearerAuth
// @Produce json
// @Param id path int true "student id"
// @Success 200 {object} util.Response
// @Router /students/{id} [delete]
func (c *StudentController) Delete(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.StudentService.Delete(uint(id)); err != nil {
		if err == util.ErrStudentNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
