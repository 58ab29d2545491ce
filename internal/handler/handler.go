package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/middleware"
	"tripmate/pkg/errors"
	"tripmate/pkg/response"
)

// requireUserID 从认证上下文取用户 public_id，失败时已写响应
func requireUserID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	userIDStr, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return 0, false
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		response.Error(ctx, c, errors.InvalidUserID)
		return 0, false
	}

	return userID, true
}
