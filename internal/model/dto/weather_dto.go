package dto

// ========== 天气 DTO ==========

// WeatherRequest 天气查询请求，坐标来自行程中第一个带定位的活动
type WeatherRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lon float64 `json:"lon" binding:"required"`
}

// DayWeather 按日聚合后的天气摘要
type DayWeather struct {
	Date        string  `json:"date"`
	Temp        float64 `json:"temp"`
	Humidity    int     `json:"humidity"`
	Main        string  `json:"main"`
	Description string  `json:"description"`
}
