package controller

import (
	"jobprep_backend/internal/service"
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// CredentialsRequest 注册和登录共用的请求体
// swagger:model CredentialsRequest
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary 注册新用户
// @Description 使用邮箱和密码注册，成功后直接返回 token
// @Tags 用户
// @Accept  json
// @Produce  json
// @Param   body body CredentialsRequest true "邮箱和密码"
// @Success 201 {object} util.Response{data=service.AuthResult} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /users [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.AuthService.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "User registered successfully", result)
}

// Login godoc
// @Summary 用户登录
// @Tags 用户
// @Accept  json
// @Produce  json
// @Param   body body CredentialsRequest true "邮箱和密码"
// @Success 200 {object} util.Response{data=service.AuthResult} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /users/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		util.HandleError(ctx, util.E(util.CodeMissingRequiredFields, "AuthController.Login", "email and password are required", nil))
		return
	}

	result, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessWithMessage(ctx, "Login successful", result)
}

// Me godoc
// @Summary 当前用户信息
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.UserSummary}
// @Failure 401 {object} util.Response "未授权"
// @Router /users/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	user, err := c.AuthService.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
