package cache

import (
	"context"
	"fmt"

	"tripmate/pkg/planparse"
)

// 归一化结果缓存。解析是纯计算但 plan_data 可能很大，
// 列表页逐条解析时命中率高。

// GetItinerary 读取归一化行程缓存
func GetItinerary(ctx context.Context, planID int64) (*planparse.Itinerary, bool) {
	var it planparse.Itinerary
	hit, err := ItineraryProtectedCache.Get(ctx, fmt.Sprintf("%d", planID), &it)
	if err != nil || !hit {
		return nil, false
	}
	return &it, true
}

// SetItinerary 写入归一化行程缓存
func SetItinerary(ctx context.Context, planID int64, it planparse.Itinerary) error {
	return ItineraryProtectedCache.Set(ctx, fmt.Sprintf("%d", planID), it)
}

// InvalidateItinerary 计划保存或删除时清缓存
func InvalidateItinerary(ctx context.Context, planID int64) error {
	return ItineraryProtectedCache.Delete(ctx, fmt.Sprintf("%d", planID))
}
