package controller

import (
	"errors"
	"strconv"

	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	GradingService *service.GradingService
}

func NewSubmissionController(grading *service.GradingService) *SubmissionController {
	return &SubmissionController{GradingService: grading}
}

// @Summary 升级错题提示
// @Tags 判卷
// @Accept json
// @Produce json
// @Param id path int true "判题记录ID"
// @Param body body service.HintUpgradeRequest true "提示等级"
// @Success 200 {object} util.Response
// @Router /api/submission/items/{id}/hint [post]
func (c *SubmissionController) UpgradeHint(ctx *gin.Context) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid item id")
		return
	}

	var req service.HintUpgradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.GradingService.UpgradeHint(uint(itemID), &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx, "Submission item not found")
		case errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, "Hint is only available for wrong answers")
		case errors.Is(err, util.ErrInvalidCredentials):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, res)
}
