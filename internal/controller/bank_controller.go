package controller

import (
	"errors"

	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BankController struct {
	Service *service.BankService
}

func NewBankController(svc *service.BankService) *BankController {
	return &BankController{Service: svc}
}

// @Summary 获取最新题库版本
// @Tags 题库
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/question_bank/latest_version [get]
func (c *BankController) LatestVersion(ctx *gin.Context) {
	versionID, err := c.Service.LatestVersion(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "No question bank versions found")
			return
		}
		if errors.Is(err, util.ErrEmptyQuestionBank) || errors.Is(err, util.ErrInvalidState) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"version_id": versionID})
}
