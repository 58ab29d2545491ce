package utils

import (
	"sync"
	"time"

	"tripmate/config"
)

var (
	planLocOnce sync.Once
	planLoc     *time.Location
)

// PlanLocation 返回行程时区锚点（配置 PLAN_TIMEZONE）。
// 加载失败时回退到 UTC，而不是本地时区，保证各实例行为一致。
func PlanLocation() *time.Location {
	planLocOnce.Do(func() {
		loc, err := time.LoadLocation(config.Cfg.PlanTimezone)
		if err != nil {
			loc = time.UTC
		}
		planLoc = loc
	})
	return planLoc
}
