package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"tripmate/pkg/response"
	"tripmate/pkg/token"
)

const IdentityKey = token.IdentityKey

var authMiddleware *jwt.HertzJWTMiddleware

// initAuthMiddleware 复用 token 包的签名配置构建鉴权中间件，
// 两边必须用同一把密钥和同一个 identity key。
func initAuthMiddleware() error {
	gen := token.GetGenerator()
	if gen == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "tripmate",
		Key:         gen.Key,
		Timeout:     gen.Timeout,
		MaxRefresh:  gen.MaxRefresh,
		IdentityKey: gen.IdentityKey,
		TimeFunc:    gen.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			switch uid := claims[IdentityKey].(type) {
			case string:
				return uid
			case float64:
				// 旧版本签发的 token 里 user_id 是数字
				return fmt.Sprintf("%.0f", uid)
			default:
				return nil
			}
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, response.ErrorResponse{
				Success: false,
				Code:    "UNAUTHORIZED",
				Message: message,
			})
		},

		// 移动端只走 Authorization 头
		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	}

	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetUserID 取鉴权中间件写入的用户 public_id（字符串格式）
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
