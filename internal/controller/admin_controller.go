package controller

import (
	"errors"
	"strconv"

	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AuthService  *service.AuthService
	DraftService *service.DraftService
	BankService  *service.BankService
}

func NewAdminController(auth *service.AuthService, draft *service.DraftService, bank *service.BankService) *AdminController {
	return &AdminController{
		AuthService:  auth,
		DraftService: draft,
		BankService:  bank,
	}
}

// @Summary 管理员登录
// @Tags 管理端
// @Accept json
// @Produce json
// @Param body body service.LoginRequest true "登录信息"
// @Success 200 {object} util.Response
// @Router /api/admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Login(&req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 生成草稿题
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Param topic query string true "知识点/主题"
// @Param count query int false "题目数量" default(5)
// @Param source query string false "生成来源 ai/offline/auto" default(auto)
// @Success 200 {object} util.Response
// @Router /api/admin/generate_drafts [post]
func (c *AdminController) GenerateDrafts(ctx *gin.Context) {
	topic := ctx.Query("topic")
	count := 5
	if v := ctx.Query("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}
	source := ctx.DefaultQuery("source", "auto")

	drafts, err := c.DraftService.GenerateDrafts(topic, count, source)
	if err != nil {
		// source=ai 严格模式下 AI 失败直接向上抛 500
		util.Error(ctx, 500, "AI generation error: "+err.Error())
		return
	}

	util.Success(ctx, drafts)
}

// @Summary 草稿区统计
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/draft_stats [get]
func (c *AdminController) DraftStats(ctx *gin.Context) {
	stats, err := c.DraftService.Stats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 草稿列表
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Param q query string false "题干关键字"
// @Param topic query string false "主题过滤"
// @Param type query string false "题型过滤"
// @Param difficulty query int false "难度过滤"
// @Param offset query int false "偏移" default(0)
// @Param limit query int false "页大小" default(50)
// @Success 200 {object} util.Response
// @Router /api/admin/drafts [get]
func (c *AdminController) ListDrafts(ctx *gin.Context) {
	query := service.DraftListQuery{
		Keyword: ctx.Query("q"),
		Topic:   ctx.Query("topic"),
		Type:    ctx.Query("type"),
		Offset:  0,
		Limit:   50,
	}
	if v := ctx.Query("difficulty"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			query.Difficulty = &d
		}
	}
	if v := ctx.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Offset = n
		}
	}
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Limit = n
		}
	}

	result, err := c.DraftService.List(query)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 草稿详情
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Param id path string true "草稿ID"
// @Success 200 {object} util.Response
// @Router /api/admin/drafts/{id} [get]
func (c *AdminController) GetDraft(ctx *gin.Context) {
	draft, err := c.DraftService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Draft not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, draft)
}

// @Summary 新建草稿
// @Tags 管理端
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "草稿内容"
// @Success 200 {object} util.Response
// @Router /api/admin/drafts [post]
func (c *AdminController) CreateDraft(ctx *gin.Context) {
	var payload map[string]interface{}
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.DraftService.Create(payload)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, draft)
}

// @Summary 更新草稿
// @Tags 管理端
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "草稿ID"
// @Param body body object true "草稿内容"
// @Success 200 {object} util.Response
// @Router /api/admin/drafts/{id} [put]
func (c *AdminController) UpdateDraft(ctx *gin.Context) {
	var payload map[string]interface{}
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.DraftService.Update(ctx.Param("id"), payload)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Draft not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, draft)
}

// @Summary 删除草稿
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Param id path string true "草稿ID"
// @Success 200 {object} util.Response
// @Router /api/admin/drafts/{id} [delete]
func (c *AdminController) DeleteDraft(ctx *gin.Context) {
	if err := c.DraftService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx, "Draft not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": 1})
}

// @Summary 批量清洗草稿
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Param default_topic query string false "默认主题" default(Calculus)
// @Success 200 {object} util.Response
// @Router /api/admin/drafts/normalize [post]
func (c *AdminController) NormalizeDrafts(ctx *gin.Context) {
	defaultTopic := ctx.DefaultQuery("default_topic", "Calculus")

	result, err := c.DraftService.NormalizeAll(defaultTopic)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 批量追加草稿
// @Tags 管理端
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body []object true "题目列表"
// @Success 200 {object} util.Response
// @Router /api/admin/save_drafts [post]
func (c *AdminController) SaveDrafts(ctx *gin.Context) {
	var questions []map[string]interface{}
	if err := ctx.ShouldBindJSON(&questions); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	added, err := c.DraftService.SaveDrafts(questions)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Drafts saved successfully", "added_count": added})
}

// @Summary 冻结题库
// @Tags 管理端
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/freeze [post]
func (c *AdminController) Freeze(ctx *gin.Context) {
	result, err := c.BankService.Freeze(ctx.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotFound):
			util.NotFound(ctx, "draft bank file not found")
		case errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, "draft bank is not valid JSON")
		case errors.Is(err, util.ErrEmptyQuestionBank):
			util.BadRequest(ctx, "draft bank is empty or only contains fallback items")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.AlreadyExists {
		util.Success(ctx, gin.H{"message": "Version already exists", "version_id": result.VersionID})
		return
	}
	util.Success(ctx, gin.H{
		"message":    "Question bank frozen successfully",
		"version_id": result.VersionID,
		"count":      result.Count,
	})
}
