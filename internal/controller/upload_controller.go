package controller

import (
	"errors"
	"mime"
	"net/http"

	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// multipartOverhead 表单边界和其他字段预留的空间
const multipartOverhead = 1 << 20

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// Upload godoc
// @Summary 上传简历文件
// @Description 支持 PDF、DOC、DOCX、TXT，最大 10MB
// @Tags 文件
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "简历文件"
// @Param   userId formData int true "用户ID"
// @Success 200 {object} util.Response{data=model.FileUpload} "上传成功"
// @Failure 400 {object} util.Response "文件过大或类型不支持"
// @Failure 404 {object} util.Response "用户不存在"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	const op = "UploadController.Upload"

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.UploadService.MaxBytes+multipartOverhead)

	file, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.HandleError(ctx, util.E(util.CodeFileTooLarge, op, "File exceeds the upload size limit", err))
			return
		}
		util.HandleError(ctx, util.E(util.CodeMissingRequiredFields, op, "No file uploaded", err))
		return
	}

	userID, err := util.ParseID(ctx.PostForm("userId"))
	if err != nil {
		util.HandleError(ctx, util.E(util.CodeMissingRequiredFields, op, "userId is required", err))
		return
	}

	upload, err := c.UploadService.Upload(ctx.Request.Context(), userID, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.SuccessWithMessage(ctx, "File uploaded successfully", gin.H{
		"fileId":           upload.ID,
		"fileName":         upload.FileName,
		"originalFileName": upload.OriginalFileName,
		"filePath":         upload.FilePath,
		"fileSize":         upload.FileSize,
		"mimeType":         upload.MimeType,
	})
}

// Get godoc
// @Summary 查看上传文件
// @Description name 为纯数字时返回该用户的文件列表（最新在前），否则返回文件内容
// @Tags 文件
// @Produce  json,octet-stream
// @Param   name path string true "用户ID或存储文件名"
// @Success 200 {object} util.Response{data=[]model.FileUpload}
// @Failure 404 {object} util.Response "文件不存在"
// @Router /uploads/{name} [get]
func (c *UploadController) Get(ctx *gin.Context) {
	name := ctx.Param("name")
	if util.IsDigits(name) {
		c.listByUser(ctx, name)
		return
	}

	upload, rc, err := c.UploadService.Open(ctx.Request.Context(), name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("inline", map[string]string{"filename": upload.OriginalFileName})
	ctx.DataFromReader(http.StatusOK, upload.FileSize, upload.MimeType, rc, map[string]string{
		"Content-Disposition": disposition,
		"Cache-Control":       "private, max-age=3600",
	})
}

func (c *UploadController) listByUser(ctx *gin.Context, raw string) {
	userID, err := util.ParseID(raw)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	files, err := c.UploadService.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, files)
}
