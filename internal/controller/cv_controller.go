package controller

import (
	"encoding/json"

	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CVController struct {
	CVService *service.CVService
}

func NewCVController(cvService *service.CVService) *CVController {
	return &CVController{CVService: cvService}
}

// ParseCVRequest swagger:model ParseCVRequest
type ParseCVRequest struct {
	CVText string `json:"cvText"`
}

type TailorCVRequest struct {
	CVJSON   json.RawMessage `json:"cvJson" swaggertype:"object"`
	JobBrief string          `json:"jobBrief"`
}

type ProcessCVRequest struct {
	CVText   string `json:"cvText"`
	JobBrief string `json:"jobBrief"`
}

type SaveCVRequest struct {
	CVJSON          json.RawMessage `json:"cvJson" swaggertype:"object"`
	OriginalContent string          `json:"originalContent"`
}

// Parse godoc
// @Summary 解析简历文本
// @Description 解析结果会暂存，返回的 cacheKey 可用于 review 和 improve
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body ParseCVRequest true "简历文本"
// @Success 200 {object} util.Response{data=service.ParseResult}
// @Failure 400 {object} util.Response "文本为空"
// @Failure 500 {object} util.Response "生成失败"
// @Router /api/cv/parse [post]
func (c *CVController) Parse(ctx *gin.Context) {
	var req ParseCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.CVService.Parse(ctx.Request.Context(), req.CVText)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ParseUpload godoc
// @Summary 解析已上传的简历文件
// @Description 仅支持 PDF 和 TXT
// @Tags 简历
// @Produce  json
// @Security ApiKeyAuth
// @Param   fileId path int true "文件ID"
// @Success 200 {object} util.Response{data=service.ParseResult}
// @Failure 400 {object} util.Response "文件类型不支持"
// @Failure 404 {object} util.Response "文件不存在"
// @Router /api/cv/parse-upload/{fileId} [post]
func (c *CVController) ParseUpload(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	fileID, ok := pathID(ctx, "fileId")
	if !ok {
		return
	}
	result, err := c.CVService.ParseUpload(ctx.Request.Context(), fileID, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Review godoc
// @Summary 审阅简历
// @Description cvJson 优先，否则使用 cacheKey 对应的草稿，草稿不会被删除
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body service.CVSource true "简历或 cacheKey"
// @Success 200 {object} util.Response{data=model.ReviewResult}
// @Failure 400 {object} util.Response "缺少简历或草稿已过期"
// @Router /api/cv/review [post]
func (c *CVController) Review(ctx *gin.Context) {
	var src service.CVSource
	if !bindJSON(ctx, &src) {
		return
	}
	review, err := c.CVService.Review(ctx.Request.Context(), src)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// Improve godoc
// @Summary 改进简历
// @Description 使用 cacheKey 时草稿读取后即删除
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body service.CVSource true "简历或 cacheKey"
// @Success 200 {object} util.Response{data=model.CVDocument}
// @Failure 400 {object} util.Response
// @Router /api/cv/improve [post]
func (c *CVController) Improve(ctx *gin.Context) {
	var src service.CVSource
	if !bindJSON(ctx, &src) {
		return
	}
	improved, err := c.CVService.Improve(ctx.Request.Context(), src)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, improved)
}

// Tailor godoc
// @Summary 按职位定制简历
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body TailorCVRequest true "简历和职位描述"
// @Success 200 {object} util.Response{data=model.CVDocument}
// @Failure 400 {object} util.Response
// @Router /api/cv/tailor [post]
func (c *CVController) Tailor(ctx *gin.Context) {
	var req TailorCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	tailored, err := c.CVService.Tailor(ctx.Request.Context(), req.CVJSON, req.JobBrief)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tailored)
}

// Process godoc
// @Summary 一次完成解析、审阅、改进和定制
// @Description jobBrief 为空时跳过定制
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body ProcessCVRequest true "简历文本和可选的职位描述"
// @Success 200 {object} util.Response{data=service.ProcessResult}
// @Failure 400 {object} util.Response
// @Router /api/cv/process [post]
func (c *CVController) Process(ctx *gin.Context) {
	var req ProcessCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.CVService.Process(ctx.Request.Context(), req.CVText, req.JobBrief)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GenerateQuestions godoc
// @Summary 根据简历和职位生成面试问题
// @Tags 简历
// @Accept  json
// @Produce  json
// @Param   body body TailorCVRequest true "简历和职位描述"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/cv/generate-questions [post]
func (c *CVController) GenerateQuestions(ctx *gin.Context) {
	var req TailorCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	questions, err := c.CVService.GenerateQuestions(ctx.Request.Context(), req.CVJSON, req.JobBrief)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions, "count": len(questions)})
}

// Save godoc
// @Summary 保存简历
// @Description 需要姓名、邮箱、至少一条教育经历和一项技能
// @Tags 简历
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SaveCVRequest true "简历和原始文本"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "缺少必填字段"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/cv/save [post]
func (c *CVController) Save(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req SaveCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cv, err := c.CVService.Save(ctx.Request.Context(), userID, req.CVJSON, req.OriginalContent)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "CV saved successfully", gin.H{
		"id":        cv.ID,
		"fullName":  cv.FullName,
		"email":     cv.Email,
		"createdAt": cv.CreatedAt,
	})
}

// List godoc
// @Summary 我的简历列表
// @Tags 简历
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CV}
// @Router /api/cv [get]
func (c *CVController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	cvs, err := c.CVService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cvs)
}

// Get godoc
// @Summary 简历详情
// @Tags 简历
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "简历ID"
// @Success 200 {object} util.Response{data=model.CV}
// @Failure 404 {object} util.Response "简历不存在"
// @Router /api/cv/{id} [get]
func (c *CVController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	cv, err := c.CVService.Get(ctx.Request.Context(), id, userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cv)
}

// Update godoc
// @Summary 更新简历
// @Tags 简历
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "简历ID"
// @Param   body body SaveCVRequest true "简历和原始文本"
// @Success 200 {object} util.Response{data=model.CV}
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "简历不存在"
// @Router /api/cv/{id} [put]
func (c *CVController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req SaveCVRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cv, err := c.CVService.Update(ctx.Request.Context(), id, userID, req.CVJSON, req.OriginalContent)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "CV updated successfully", cv)
}

// Delete godoc
// @Summary 删除简历
// @Tags 简历
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "简历ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "简历不存在"
// @Router /api/cv/{id} [delete]
func (c *CVController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CVService.Delete(ctx.Request.Context(), id, userID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "CV deleted successfully", nil)
}
