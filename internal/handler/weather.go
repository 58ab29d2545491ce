package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/model/dto"
	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// WeatherForecast 五日天气预报，按日聚合
// POST /weatherAPI
func WeatherForecast(ctx context.Context, c *app.RequestContext) {
	if _, ok := requireUserID(ctx, c); !ok {
		return
	}

	var req dto.WeatherRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	days, err := service.Weather().Forecast(ctx, req.Lat, req.Lon)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"forecast": days})
}
