package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/model/dto"
	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// Profile 查询用户资料
// GET /users/me
func Profile(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	profile, err := service.User().Profile(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"profile": profile})
}

// UpdateProfile 更新用户资料，nil 字段跳过
// PUT /users/me
func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	profile, err := service.User().UpdateProfile(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"profile": profile})
}

// DeleteAccount 注销账号，级联清理计划与提醒
// DELETE /users/me
func DeleteAccount(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.DeleteAccountRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.User().DeleteAccount(ctx, userID, req.Password); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
