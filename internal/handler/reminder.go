package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// ListReminders 查询自己的提醒任务
// GET /reminder/list
func ListReminders(ctx context.Context, c *app.RequestContext) {
	userID, ok := requireUserID(ctx, c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	tasks, err := service.Reminder().List(ctx, userID, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"reminders": tasks})
}
