package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/model/dto"
	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// GenerateAIPlan AI 生成行程
// POST /travel/aiplan
func GenerateAIPlan(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.GeneratePlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	detail, err := service.AIPlan().Generate(ctx, userID, c.ClientIP(), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"plan_id": detail.PlanID, "plan": detail})
}

// AIPlanQuota 查询剩余配额
// GET /aiplan/quota
func AIPlanQuota(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	quota, err := service.AIPlan().Quota(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"quota": quota})
}

// VerifyAIPlanSlider 预先完成滑块验证，换取一次性通行凭证
// POST /aiplan/slider/verify
func VerifyAIPlanSlider(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req struct {
		CaptchaVerifyParam string `json:"captchaVerifyParam" binding:"required"`
	}
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	passToken, err := service.AIPlan().VerifySlider(ctx, userID, c.ClientIP(), req.CaptchaVerifyParam)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"pass_token": passToken})
}
