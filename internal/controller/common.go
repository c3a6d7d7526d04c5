package controller

import (
	"jobprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUserID 取得已认证用户的 ID，未认证时直接写入 401
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.UserID == 0 {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// pathID 解析路径参数中的 ID，失败时写入 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.HandleError(ctx, err)
		return 0, false
	}
	return id, true
}

// bindJSON 请求体不是合法 JSON 时写入 400
func bindJSON(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		util.BadRequest(ctx, "Invalid request body")
		return false
	}
	return true
}
