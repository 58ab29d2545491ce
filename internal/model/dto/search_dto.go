package dto

// ========== 航班 / 酒店搜索 DTO ==========

// FlightSearchRequest 航班搜索请求，字段名与移动端一致
type FlightSearchRequest struct {
	OriginLocationCode      string `json:"originLocationCode" binding:"required"`
	DestinationLocationCode string `json:"destinationLocationCode" binding:"required"`
	DepartureDate           string `json:"departureDate" binding:"required"`
	ReturnDate              string `json:"returnDate"`
	Adults                  int    `json:"adults"`
	CurrencyCode            string `json:"currencyCode"`
	Max                     int    `json:"max"`
	TravelClass             string `json:"travelClass"`
	NonStop                 bool   `json:"nonStop"`
}

// AirportSearchQuery 机场/城市联想查询参数
type AirportSearchQuery struct {
	SubType string `query:"subType"`
	Keyword string `query:"keyword"`
}

// HotelSearchCity 酒店搜索的城市定位
type HotelSearchCity struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Currency  string  `json:"currency"`

	// 坐标缺失时按名称做地理编码
	Name string `json:"name"`
}

// HotelSearchRequest 酒店搜索请求
type HotelSearchRequest struct {
	Type           string          `json:"type"`
	City           HotelSearchCity `json:"city" binding:"required"`
	CheckinDate    string          `json:"checkin_date" binding:"required"`
	CheckoutDate   string          `json:"checkout_date" binding:"required"`
	AdultsNumber   int             `json:"adults_number"`
	ChildrenNumber int             `json:"children_number"`
}
