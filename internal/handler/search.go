package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"tripmate/internal/model/dto"
	"tripmate/internal/service"
	"tripmate/pkg/response"
)

// FlightOffersSearch 航班搜索，透传 Amadeus 原始结果
// POST /api/amadeus/FlightOffersSearch
func FlightOffersSearch(ctx context.Context, c *app.RequestContext) {
	if _, ok := requireUserID(ctx, c); !ok {
		return
	}

	var req dto.FlightSearchRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Search().FlightOffers(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"result": result})
}

// AirportCitySearch 机场/城市联想
// GET /api/amadeus/Airport_CitySearch
func AirportCitySearch(ctx context.Context, c *app.RequestContext) {
	if _, ok := requireUserID(ctx, c); !ok {
		return
	}

	var query dto.AirportSearchQuery
	if err := c.BindAndValidate(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Search().SearchAirports(ctx, query.SubType, query.Keyword)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"result": result})
}

// SearchHotelsByCoordinates 按坐标搜索酒店
// POST /api/Booking-com/SearchHotelsByCoordinates
func SearchHotelsByCoordinates(ctx context.Context, c *app.RequestContext) {
	if _, ok := requireUserID(ctx, c); !ok {
		return
	}

	var req dto.HotelSearchRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Search().SearchHotels(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, response.Body{"result": result})
}
