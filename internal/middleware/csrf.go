package middleware

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"tripmate/config"
)

// CSRFMiddleware 网页端会话的 CSRF 防护链，session 中间件必须在 csrf 之前。
// 移动端走 Bearer token，不挂这组中间件。
func CSRFMiddleware() []app.HandlerFunc {
	store := cookie.NewStore([]byte(config.Cfg.SessionSecret))
	return []app.HandlerFunc{
		sessions.New("csrf-session", store),
		csrf.New(
			csrf.WithSecret(config.Cfg.CSRFSecret),
			csrf.WithKeyLookUp("header:X-CSRF-Token"),
		),
	}
}
