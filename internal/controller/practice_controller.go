package controller

import (
	"errors"

	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	Service *service.PracticeService
}

func NewPracticeController(svc *service.PracticeService) *PracticeController {
	return &PracticeController{Service: svc}
}

// @Summary 创建同构练习
// @Tags 同构再练
// @Accept json
// @Produce json
// @Param body body service.PracticeRequest true "练习请求"
// @Success 200 {object} util.Response
// @Router /api/practice/create [post]
func (c *PracticeController) CreatePractice(ctx *gin.Context) {
	var req service.PracticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.CreatePractice(&req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx, "No other questions in this group")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, res)
}

// @Summary 提交练习作答
// @Tags 同构再练
// @Accept json
// @Produce json
// @Param id path string true "练习ID"
// @Param body body service.PracticeSubmitRequest true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/practice/{id}/submit [post]
func (c *PracticeController) SubmitPractice(ctx *gin.Context) {
	var req service.PracticeSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.SubmitPractice(ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Practice session not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, res)
}
