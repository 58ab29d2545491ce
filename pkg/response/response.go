package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/pkg/errors"
)

// 移动端消费的是固定的 {success, ...} 响应契约（历史接口形状），
// 这里统一封装，错误码只进日志和 code 字段，message 面向用户展示。

// Body 表示统一的业务响应结构。
type Body map[string]interface{}

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func errorToHTTPStatus(err error) int {
	def, ok := err.(errors.Definition)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "AIPLAN_QUOTA_EXCEEDED", "AIPLAN_SLIDER_REQUIRED", "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "INVALID_CREDENTIALS", "REFRESH_TOKEN_INVALID", "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "PLAN_NOT_OWNED":
		return http.StatusForbidden // 403
	case "PLAN_NOT_FOUND", "USER_NOT_FOUND":
		return http.StatusNotFound // 404
	case "EMAIL_ALREADY_REGISTERED", "INVALID_EMAIL_FORMAT", "INVALID_REQUEST", "INVALID_USER_ID",
		"PLAN_NAME_REQUIRED", "PLAN_DATA_MALFORMED",
		"AIPLAN_SLIDER_FAILED", "AIPLAN_DATE_RANGE_BAD",
		"INVALID_COORDINATES", "GEOCODE_FAILED", "REMINDER_CHANNEL_INVALID":
		return http.StatusBadRequest // 400
	case "AIPLAN_PROVIDER_FAILURE", "FLIGHT_SEARCH_FAILED",
		"HOTEL_SEARCH_FAILED", "WEATHER_UNAVAILABLE":
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Success 返回成功响应，payload 的键会与 success 标记合并平铺。
func Success(ctx context.Context, c *app.RequestContext, payload Body) {
	body := Body{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
