package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/model/dto"
	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// CheckPlan 查询单个计划
// POST /travel/checkplan
func CheckPlan(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.CheckPlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	detail, err := service.Plan().CheckPlan(ctx, userID, req.PlanID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 历史客户端在顶层读航班/住宿信息
	body := response.Body{"plan": detail}
	if len(detail.FlightInfo) > 0 {
		body["flightInfos"] = detail.FlightInfo
	}
	if len(detail.AccmoInfo) > 0 {
		body["accommodationInfos"] = detail.AccmoInfo
	}
	if detail.IsSharedWithMe {
		body["is_shared_with_me"] = true
		body["original_owner"] = detail.OriginalOwner
	}

	response.Success(ctx, c, body)
}

// CheckList 计划列表，包含共享给自己的
// POST /travel/checklist
func CheckList(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	plans, err := service.Plan().CheckList(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"plans": plans})
}

// SaveMobile 移动端保存计划
// POST /mobile/save_mobile
func SaveMobile(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.SavePlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	detail, err := service.Plan().SaveMobile(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"plan_id": detail.PlanID})
}

// LoadMobile 移动端加载计划
// POST /mobile/load_mobile
func LoadMobile(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.LoadPlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	plans, err := service.Plan().LoadMobile(ctx, userID, req.Newest)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// newest 请求只要最近一份
	if req.Newest {
		if len(plans) == 0 {
			response.Success(ctx, c, response.Body{"plan": nil})
			return
		}
		response.Success(ctx, c, response.Body{"plan": plans[0]})
		return
	}

	response.Success(ctx, c, response.Body{"plans": plans})
}

// DeletePlan 删除计划
// DELETE /travel/deleteplan
func DeletePlan(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.DeletePlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Plan().DeletePlan(ctx, userID, req.PlanID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// SharePlan 共享计划给指定邮箱的用户
// POST /travel/shareplan
func SharePlan(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.SharePlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Plan().SharePlan(ctx, userID, req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// UnsharePlan 取消共享
// POST /travel/unshareplan
func UnsharePlan(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.UnsharePlanRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Plan().UnsharePlan(ctx, userID, req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
