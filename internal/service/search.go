package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"tripmate/internal/model/dto"
	"tripmate/pkg/amadeus"
	"tripmate/pkg/bookingcom"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/weather"
)

var (
	searchService *SearchService
	searchOnce    sync.Once
)

func Search() *SearchService {
	searchOnce.Do(func() {
		searchService = &SearchService{}
	})
	return searchService
}

// SearchService 航班/酒店搜索代理，原始响应直接透传给移动端
type SearchService struct{}

// FlightOffers 航班报价搜索
func (s *SearchService) FlightOffers(ctx context.Context, req dto.FlightSearchRequest) (json.RawMessage, error) {
	params := amadeus.FlightSearchParams{
		OriginLocationCode:      req.OriginLocationCode,
		DestinationLocationCode: req.DestinationLocationCode,
		DepartureDate:           req.DepartureDate,
		ReturnDate:              req.ReturnDate,
		Adults:                  req.Adults,
		CurrencyCode:            req.CurrencyCode,
		Max:                     req.Max,
		TravelClass:             req.TravelClass,
		NonStop:                 req.NonStop,
	}
	if params.Adults <= 0 {
		params.Adults = 1
	}
	if params.CurrencyCode == "" {
		params.CurrencyCode = "KRW"
	}
	if params.Max <= 0 {
		params.Max = 20
	}

	offers, err := amadeus.FlightOffers(ctx, params)
	if err != nil {
		logger.Logger.Error("Flight offers search failed",
			zap.String("origin", req.OriginLocationCode),
			zap.String("destination", req.DestinationLocationCode),
			zap.Error(err),
		)
		return nil, errors.FlightSearchFailed
	}
	return offers, nil
}

// SearchAirports 机场/城市联想
func (s *SearchService) SearchAirports(ctx context.Context, subType, keyword string) (json.RawMessage, error) {
	if subType == "" {
		subType = "AIRPORT,CITY"
	}

	locations, err := amadeus.SearchLocations(ctx, subType, keyword)
	if err != nil {
		logger.Logger.Error("Airport search failed",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return nil, errors.FlightSearchFailed
	}
	return locations, nil
}

// SearchHotels 按坐标搜索酒店，坐标缺失时先对城市名做地理编码
func (s *SearchService) SearchHotels(ctx context.Context, req dto.HotelSearchRequest) (json.RawMessage, error) {
	lat, lon := req.City.Latitude, req.City.Longitude

	if lat == 0 && lon == 0 {
		if req.City.Name == "" {
			return nil, errors.InvalidCoordinates
		}
		loc, err := weather.Geocode(ctx, req.City.Name)
		if err != nil {
			logger.Logger.Warn("Hotel city geocode failed",
				zap.String("city", req.City.Name),
				zap.Error(err),
			)
			return nil, errors.GeocodeFailed
		}
		lat, lon = loc.Latitude, loc.Longitude
	}

	currency := req.City.Currency
	if currency == "" {
		currency = "KRW"
	}
	adults := req.AdultsNumber
	if adults <= 0 {
		adults = 2
	}

	hotels, err := bookingcom.SearchByCoordinates(ctx, bookingcom.HotelSearchParams{
		Latitude:       lat,
		Longitude:      lon,
		Currency:       currency,
		CheckinDate:    req.CheckinDate,
		CheckoutDate:   req.CheckoutDate,
		AdultsNumber:   adults,
		ChildrenNumber: req.ChildrenNumber,
	})
	if err != nil {
		logger.Logger.Error("Hotel search failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return nil, errors.HotelSearchFailed
	}
	return hotels, nil
}
