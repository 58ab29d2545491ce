package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"tripmate/internal/handler"
	"tripmate/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	//h.Use(middleware.CSRFMiddleware()...) 移动端是 Bearer token，网页版上线再挂

	// 认证相关路由
	auth := h.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/signup", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
		auth.POST("/logout", middleware.AuthMiddleware(), handler.Logout)
	}

	// 登录后的路由统一挂鉴权与通用限流
	authed := h.Group("/", middleware.AuthMiddleware(), middleware.GeneralRateLimitMiddleware())

	// 用户资料
	users := authed.Group("/users")
	{
		users.GET("/me", handler.Profile)
		users.PUT("/me", handler.UpdateProfile)
		users.DELETE("/me", handler.DeleteAccount)
	}

	// 计划查询与共享，路径沿用移动端历史命名
	travel := authed.Group("/travel")
	{
		travel.POST("/checkplan", handler.CheckPlan)
		travel.POST("/checklist", handler.CheckList)
		travel.DELETE("/deleteplan", handler.DeletePlan)
		travel.POST("/aiplan", middleware.AIPlanRateLimitMiddleware(), handler.GenerateAIPlan)
		travel.POST("/shareplan", handler.SharePlan)
		travel.POST("/unshareplan", handler.UnsharePlan)
	}

	// 移动端保存/加载
	mobile := authed.Group("/mobile")
	{
		mobile.POST("/save_mobile", handler.SaveMobile)
		mobile.POST("/load_mobile", handler.LoadMobile)
	}

	// AI 生成额度与滑块验证
	aiplan := authed.Group("/aiplan")
	{
		aiplan.GET("/quota", handler.AIPlanQuota)
		aiplan.POST("/slider/verify", handler.VerifyAIPlanSlider)
	}

	// 第三方搜索代理
	api := authed.Group("/api", middleware.SearchRateLimitMiddleware())
	{
		api.POST("/amadeus/FlightOffersSearch", handler.FlightOffersSearch)
		api.GET("/amadeus/Airport_CitySearch", handler.AirportCitySearch)
		api.POST("/Booking-com/SearchHotelsByCoordinates", handler.SearchHotelsByCoordinates)
	}

	// 天气，路径保持与旧客户端兼容
	authed.POST("/weatherAPI", handler.WeatherForecast)

	// 提醒任务查询
	authed.GET("/reminder/list", handler.ListReminders)
}
