package controller

import (
	"errors"

	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PaperController struct {
	PaperService   *service.PaperService
	GradingService *service.GradingService
}

func NewPaperController(paper *service.PaperService, grading *service.GradingService) *PaperController {
	return &PaperController{PaperService: paper, GradingService: grading}
}

// @Summary 生成试卷
// @Tags 组卷
// @Accept json
// @Produce json
// @Param body body service.PaperCreateRequest true "组卷参数"
// @Success 200 {object} util.Response
// @Router /api/paper/create [post]
func (c *PaperController) CreatePaper(ctx *gin.Context) {
	var req service.PaperCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.PaperService.CreatePaper(ctx.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoQuestionsAvailable):
			util.BadRequest(ctx, "No questions available in the current question bank. Please generate and freeze questions first.")
		case errors.Is(err, util.ErrEmptyQuestionBank), errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx, "No question bank versions found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, res)
}

// @Summary 获取试卷
// @Tags 组卷
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/paper/{id} [get]
func (c *PaperController) GetPaper(ctx *gin.Context) {
	res, err := c.PaperService.GetPaper(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Paper not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 提交试卷判分
// @Tags 判卷
// @Accept json
// @Produce json
// @Param id path string true "试卷ID"
// @Param body body service.SubmitRequest true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/paper/{id}/submit [post]
func (c *PaperController) SubmitPaper(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.GradingService.Submit(ctx.Param("id"), &req)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Paper not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, res)
}
