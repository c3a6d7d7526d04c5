package controller

import (
	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 用户列表类接口，只返回去除密码后的字段
type UserController struct {
	AuthService *service.AuthService
}

func NewUserController(authService *service.AuthService) *UserController {
	return &UserController{AuthService: authService}
}

// ListUsers godoc
// @Summary 获取用户列表
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserSummary} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.AuthService.ListUsers(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// ListEmails godoc
// @Summary 获取全部用户邮箱
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]string} "成功"
// @Router /users/emails [get]
func (c *UserController) ListEmails(ctx *gin.Context) {
	emails, err := c.AuthService.ListEmails(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, emails)
}
