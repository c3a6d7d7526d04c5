package controller

import (
	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
}

func NewInterviewController(interviewService *service.InterviewService) *InterviewController {
	return &InterviewController{InterviewService: interviewService}
}

// Generate godoc
// @Summary 生成模拟面试
// @Description questionCount 默认 10，范围 1-50
// @Tags 面试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GenerateInterviewInput true "职位和经验"
// @Success 201 {object} util.Response{data=service.GenerateInterviewResult}
// @Failure 400 {object} util.Response "参数错误"
// @Failure 500 {object} util.Response "生成失败"
// @Router /api/interviews/generate [post]
func (c *InterviewController) Generate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var in service.GenerateInterviewInput
	if !bindJSON(ctx, &in) {
		return
	}
	result, err := c.InterviewService.Generate(ctx.Request.Context(), userID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Interview generated successfully", result)
}

// List godoc
// @Summary 我的面试列表
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.InterviewSessionSummary}
// @Router /api/interviews [get]
func (c *InterviewController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessions, err := c.InterviewService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// Get godoc
// @Summary 面试详情
// @Description 问题按顺序返回，不含参考答案和提示
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "面试ID"
// @Success 200 {object} util.Response{data=service.SessionDetail}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id} [get]
func (c *InterviewController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.InterviewService.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// GetQuestion godoc
// @Summary 面试问题详情
// @Description 含参考答案、提示和当前用户的回答
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问题ID"
// @Success 200 {object} util.Response{data=service.QuestionDetail}
// @Failure 404 {object} util.Response
// @Router /api/interviews/questions/{id} [get]
func (c *InterviewController) GetQuestion(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.InterviewService.GetQuestion(ctx.Request.Context(), id, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// SubmitAnswer godoc
// @Summary 提交回答
// @Description 同一问题重复提交会覆盖之前的回答
// @Tags 面试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SubmitAnswerInput true "回答"
// @Success 200 {object} util.Response{data=model.InterviewResponse}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/interviews/submit-answer [post]
func (c *InterviewController) SubmitAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var in service.SubmitAnswerInput
	if !bindJSON(ctx, &in) {
		return
	}
	response, err := c.InterviewService.SubmitAnswer(ctx.Request.Context(), userID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Answer submitted successfully", response)
}

// Responses godoc
// @Summary 面试的全部问题和回答
// @Tags 面试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "面试ID"
// @Success 200 {object} util.Response{data=[]model.QuestionWithResponse}
// @Failure 404 {object} util.Response
// @Router /api/interviews/{id}/responses [get]
func (c *InterviewController) Responses(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	rows, err := c.InterviewService.Responses(ctx.Request.Context(), id, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
