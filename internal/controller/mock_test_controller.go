package controller

import (
	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MockTestController struct {
	MockTestService *service.MockTestService
}

func NewMockTestController(mockTestService *service.MockTestService) *MockTestController {
	return &MockTestController{MockTestService: mockTestService}
}

// Generate godoc
// @Summary 生成模拟测试
// @Description difficulty 取值 easy / medium / hard，questionCount 范围 5-50
// @Tags 模拟测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GenerateTestInput true "主题、难度和题数"
// @Success 201 {object} util.Response{data=service.GenerateTestResult}
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response "生成失败"
// @Router /api/tests/generate [post]
func (c *MockTestController) Generate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var in service.GenerateTestInput
	if !bindJSON(ctx, &in) {
		return
	}
	result, err := c.MockTestService.Generate(ctx.Request.Context(), userID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Test generated successfully", result)
}

// GenerateForRole godoc
// @Summary 按职位生成模拟测试
// @Tags 模拟测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GenerateRoleTestInput true "职位、经验和题数"
// @Success 201 {object} util.Response{data=service.GenerateTestResult}
// @Failure 400 {object} util.Response
// @Router /api/tests/generate-for-role [post]
func (c *MockTestController) GenerateForRole(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var in service.GenerateRoleTestInput
	if !bindJSON(ctx, &in) {
		return
	}
	result, err := c.MockTestService.GenerateForRole(ctx.Request.Context(), userID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Test generated successfully", result)
}

// List godoc
// @Summary 模拟测试列表
// @Description 含题数和当前用户的作答次数
// @Tags 模拟测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.MockTestSummary}
// @Router /api/tests [get]
func (c *MockTestController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	tests, err := c.MockTestService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// Get godoc
// @Summary 模拟测试详情
// @Description 不含正确答案和解析
// @Tags 模拟测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测试ID"
// @Success 200 {object} util.Response{data=service.TestDetail}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *MockTestController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.MockTestService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Submit godoc
// @Summary 提交测试答案
// @Description answers 的键为题目ID，未作答的题目计为错误
// @Tags 模拟测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测试ID"
// @Param   body body service.SubmitTestInput true "答案和用时（秒）"
// @Success 200 {object} util.Response{data=service.SubmitTestResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/submit [post]
func (c *MockTestController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.SubmitTestInput
	if !bindJSON(ctx, &in) {
		return
	}
	result, err := c.MockTestService.Submit(ctx.Request.Context(), id, userID, in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Test submitted successfully", result)
}

// Results godoc
// @Summary 我的测试成绩
// @Tags 模拟测试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ResultHistory}
// @Router /api/tests/results [get]
func (c *MockTestController) Results(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	history, err := c.MockTestService.Results(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// Result godoc
// @Summary 成绩详情
// @Tags 模拟测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "成绩ID"
// @Success 200 {object} util.Response{data=service.ResultDetail}
// @Failure 404 {object} util.Response
// @Router /api/tests/results/{id} [get]
func (c *MockTestController) Result(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.MockTestService.Result(ctx.Request.Context(), id, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
