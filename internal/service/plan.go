package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/model/dto"
	"tripmate/internal/queue"
	"tripmate/internal/repository"
	"tripmate/internal/schedule"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/planparse"
	"tripmate/pkg/snowflake"
	"tripmate/utils"
)

var (
	planService *PlanService
	planOnce    sync.Once
)

func Plan() *PlanService {
	planOnce.Do(func() {
		planService = &PlanService{
			userRepo:     repository.NewUserRepo(),
			planRepo:     repository.NewPlanRepo(),
			reminderRepo: repository.NewReminderRepo(),
		}
	})
	return planService
}

type PlanService struct {
	userRepo     *repository.UserRepo
	planRepo     *repository.PlanRepo
	reminderRepo *repository.ReminderRepo
}

// CheckPlan 查询单个计划，owner 或被共享者可见
func (s *PlanService) CheckPlan(ctx context.Context, userPublicID, planPublicID int64) (*dto.PlanDetail, error) {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByPublicID(ctx, planPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	if plan == nil {
		return nil, errors.PlanNotFound
	}

	sharedWithMe := false
	ownerNickname := ""
	if plan.UserID != user.ID {
		share, err := s.planRepo.GetShare(ctx, plan.ID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query share: %w", err)
		}
		if share == nil {
			return nil, errors.PlanNotOwned
		}
		sharedWithMe = true

		owner, err := s.userRepo.GetByID(ctx, plan.UserID)
		if err == nil && owner != nil {
			ownerNickname = owner.Nickname
		}
	}

	detail := s.buildDetail(ctx, plan)
	detail.IsSharedWithMe = sharedWithMe
	detail.OriginalOwner = ownerNickname
	return detail, nil
}

// CheckList 计划列表，包含自己的和共享给自己的
func (s *PlanService) CheckList(ctx context.Context, userPublicID int64) ([]dto.PlanSummary, error) {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	own, err := s.planRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	shared, shares, err := s.planRepo.ListSharedWith(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared plans: %w", err)
	}

	owners := make(map[int64]string)
	for _, sh := range shares {
		if _, ok := owners[sh.OwnerID]; ok {
			continue
		}
		owner, err := s.userRepo.GetByID(ctx, sh.OwnerID)
		if err == nil && owner != nil {
			owners[sh.OwnerID] = owner.Nickname
		}
	}

	now := time.Now().In(utils.PlanLocation())
	summaries := make([]dto.PlanSummary, 0, len(own)+len(shared))

	for i := range own {
		summaries = append(summaries, s.buildSummary(ctx, &own[i], now, false, ""))
	}
	for i := range shared {
		summaries = append(summaries, s.buildSummary(ctx, &shared[i], now, true, owners[shared[i].UserID]))
	}

	return summaries, nil
}

// SaveMobile 移动端保存计划。title/name、data/plans 双字段归一，
// 行程体按写入的原始形态落库，格式修正全部留给读取路径。
func (s *PlanService) SaveMobile(ctx context.Context, userPublicID int64, req dto.SavePlanRequest) (*dto.PlanDetail, error) {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	data := req.Data
	if len(data) == 0 {
		data = req.Plans
	}
	if len(data) > 0 && !json.Valid(data) {
		return nil, errors.PlanDataMalformed
	}

	var plan *model.TravelPlan
	if req.PlanID != nil {
		plan, err = s.planRepo.GetByPublicID(ctx, *req.PlanID)
		if err != nil {
			return nil, fmt.Errorf("failed to query plan: %w", err)
		}
		if plan == nil {
			return nil, errors.PlanNotFound
		}
		if plan.UserID != user.ID {
			return nil, errors.PlanNotOwned
		}
	}

	if plan == nil {
		publicID, err := snowflake.NextID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate plan ID: %w", err)
		}
		plan = &model.TravelPlan{
			PublicID: publicID,
			UserID:   user.ID,
		}
	}

	if len(data) > 0 {
		plan.PlanData = model.RawJSONB(data)
		// 新的行程体覆盖旧的预归一化串
		plan.ItinerarySchedules = nil
	}
	if flight := req.Flight(); len(flight) > 0 {
		plan.FlightInfo = model.RawJSONB(flight)
	}
	if accmo := req.Accommodation(); len(accmo) > 0 {
		plan.AccmoInfo = model.RawJSONB(accmo)
	}
	if req.PaidPlan != nil {
		plan.PaidPlan = bool(*req.PaidPlan)
	}

	plan.Name = s.resolveName(req, plan)

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	if err := cache.InvalidateItinerary(ctx, plan.PublicID); err != nil {
		logger.Logger.Warn("Failed to invalidate itinerary cache",
			zap.Int64("plan_id", plan.PublicID),
			zap.Error(err),
		)
	}

	// 行程变了，提醒按新内容重建。旧任务行和槽位标记都要清，
	// 两边任何一个留下都会把重建的同槽位任务当成重复拦掉。
	if err := s.reminderRepo.DeleteByPlan(ctx, plan.ID); err != nil {
		logger.Logger.Warn("Failed to delete plan reminders",
			zap.Int64("plan_id", plan.PublicID),
			zap.Error(err),
		)
	}
	if err := cache.ClearPlanReminderMarks(ctx, plan.ID); err != nil {
		logger.Logger.Warn("Failed to clear reminder slot marks",
			zap.Int64("plan_id", plan.PublicID),
			zap.Error(err),
		)
	}
	if user.ReminderEnabled && user.ReminderChannel != model.ReminderChannelNone && user.Phone != "" {
		if _, err := schedule.GetReminderScheduler().EnsurePlanReminders(ctx, plan, user); err != nil {
			logger.Logger.Warn("Failed to rebuild plan reminders",
				zap.Int64("plan_id", plan.PublicID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Plan saved",
		zap.Int64("plan_id", plan.PublicID),
		zap.Int64("user_id", userPublicID),
	)

	return s.buildDetail(ctx, plan), nil
}

// LoadMobile 移动端加载。newest=true 只取最近更新的一条。
func (s *PlanService) LoadMobile(ctx context.Context, userPublicID int64, newest bool) ([]dto.PlanDetail, error) {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return nil, err
	}

	if newest {
		plan, err := s.planRepo.LatestByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to query latest plan: %w", err)
		}
		if plan == nil {
			return []dto.PlanDetail{}, nil
		}
		return []dto.PlanDetail{*s.buildDetail(ctx, plan)}, nil
	}

	plans, err := s.planRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	details := make([]dto.PlanDetail, 0, len(plans))
	for i := range plans {
		details = append(details, *s.buildDetail(ctx, &plans[i]))
	}
	return details, nil
}

// DeletePlan 删除计划并清理缓存、未投递提醒
func (s *PlanService) DeletePlan(ctx context.Context, userPublicID, planPublicID int64) error {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return err
	}

	plan, err := s.planRepo.GetByPublicID(ctx, planPublicID)
	if err != nil {
		return fmt.Errorf("failed to query plan: %w", err)
	}
	if plan == nil {
		return errors.PlanNotFound
	}
	if plan.UserID != user.ID {
		return errors.PlanNotOwned
	}

	if err := s.reminderRepo.DeleteByPlan(ctx, plan.ID); err != nil {
		logger.Logger.Warn("Failed to delete plan reminders",
			zap.Int64("plan_id", planPublicID),
			zap.Error(err),
		)
	}
	if err := cache.ClearPlanReminderMarks(ctx, plan.ID); err != nil {
		logger.Logger.Warn("Failed to clear reminder slot marks",
			zap.Int64("plan_id", planPublicID),
			zap.Error(err),
		)
	}

	if err := s.planRepo.Delete(ctx, plan.ID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	if err := cache.InvalidateItinerary(ctx, planPublicID); err != nil {
		logger.Logger.Warn("Failed to invalidate itinerary cache",
			zap.Int64("plan_id", planPublicID),
			zap.Error(err),
		)
	}

	if err := queue.PublishPlanDeletedEvent(planPublicID, plan.ID, userPublicID); err != nil {
		logger.Logger.Warn("Failed to publish plan deleted event",
			zap.Int64("plan_id", planPublicID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Plan deleted",
		zap.Int64("plan_id", planPublicID),
		zap.Int64("user_id", userPublicID),
	)

	return nil
}

// SharePlan 把计划共享给指定邮箱的用户（只读）
func (s *PlanService) SharePlan(ctx context.Context, userPublicID int64, req dto.SharePlanRequest) error {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return err
	}

	plan, err := s.planRepo.GetByPublicID(ctx, req.PlanID)
	if err != nil {
		return fmt.Errorf("failed to query plan: %w", err)
	}
	if plan == nil {
		return errors.PlanNotFound
	}
	if plan.UserID != user.ID {
		return errors.PlanNotOwned
	}

	target, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to query target user: %w", err)
	}
	if target == nil {
		return errors.UserNotFound
	}
	if target.ID == user.ID {
		return nil
	}

	existing, err := s.planRepo.GetShare(ctx, plan.ID, target.ID)
	if err != nil {
		return fmt.Errorf("failed to query share: %w", err)
	}
	if existing != nil {
		return nil
	}

	share := &model.PlanShare{
		PlanID:       plan.ID,
		OwnerID:      user.ID,
		SharedWithID: target.ID,
	}
	if err := s.planRepo.CreateShare(ctx, share); err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	logger.Logger.Info("Plan shared",
		zap.Int64("plan_id", req.PlanID),
		zap.Int64("owner_id", userPublicID),
		zap.Int64("shared_with", target.PublicID),
	)

	return nil
}

// UnsharePlan 取消共享
func (s *PlanService) UnsharePlan(ctx context.Context, userPublicID int64, req dto.UnsharePlanRequest) error {
	user, err := s.requireUser(ctx, userPublicID)
	if err != nil {
		return err
	}

	plan, err := s.planRepo.GetByPublicID(ctx, req.PlanID)
	if err != nil {
		return fmt.Errorf("failed to query plan: %w", err)
	}
	if plan == nil {
		return errors.PlanNotFound
	}
	if plan.UserID != user.ID {
		return errors.PlanNotOwned
	}

	target, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to query target user: %w", err)
	}
	if target == nil {
		return errors.UserNotFound
	}

	return s.planRepo.DeleteShare(ctx, plan.ID, target.ID)
}

// Itinerary 取归一化后的行程，read-through 缓存
func (s *PlanService) Itinerary(ctx context.Context, plan *model.TravelPlan) planparse.Itinerary {
	if it, ok := cache.GetItinerary(ctx, plan.PublicID); ok {
		return *it
	}

	it := planparse.Normalize(plan.ToRecord())

	if err := cache.SetItinerary(ctx, plan.PublicID, it); err != nil {
		logger.Logger.Warn("Failed to cache itinerary",
			zap.Int64("plan_id", plan.PublicID),
			zap.Error(err),
		)
	}

	return it
}

func (s *PlanService) requireUser(ctx context.Context, publicID int64) (*model.User, error) {
	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}
	return user, nil
}

func (s *PlanService) resolveName(req dto.SavePlanRequest, plan *model.TravelPlan) string {
	if req.Title != "" {
		return req.Title
	}
	if req.Name != "" {
		return req.Name
	}
	if plan.Name != "" {
		return plan.Name
	}
	it := planparse.Normalize(plan.ToRecord())
	return it.Title
}

func (s *PlanService) buildDetail(ctx context.Context, plan *model.TravelPlan) *dto.PlanDetail {
	it := s.Itinerary(ctx, plan)

	now := time.Now().In(utils.PlanLocation())
	startDate, endDate := planparse.TripDates(it.Days, now)
	status := planparse.DeriveStatus(startDate, endDate, now)

	var anchor *dto.WeatherAnchor
	if act, ok := it.FirstLocated(); ok {
		anchor = &dto.WeatherAnchor{
			Lat:  float64(*act.Lat),
			Lon:  float64(*act.Lng),
			Name: act.Name,
		}
	}

	return &dto.PlanDetail{
		PlanID:      plan.PublicID,
		Name:        plan.Name,
		Itinerary:   it,
		FlightInfo:  json.RawMessage(plan.FlightInfo),
		AccmoInfo:   json.RawMessage(plan.AccmoInfo),
		PaidPlan:    plan.PaidPlan,
		LastUpdated: plan.UpdatedAt,
		Status:      string(status),
		StatusLabel: status.Label(),
		StartDate:   startDate,
		EndDate:     endDate,

		WeatherAnchor: anchor,
	}
}

func (s *PlanService) buildSummary(ctx context.Context, plan *model.TravelPlan, now time.Time, sharedWithMe bool, ownerNickname string) dto.PlanSummary {
	it := s.Itinerary(ctx, plan)
	startDate, endDate := planparse.TripDates(it.Days, now)
	status := planparse.DeriveStatus(startDate, endDate, now)

	return dto.PlanSummary{
		PlanID:         plan.PublicID,
		Name:           plan.Name,
		LastUpdated:    plan.UpdatedAt,
		PaidPlan:       plan.PaidPlan,
		IsSharedWithMe: sharedWithMe,
		OriginalOwner:  ownerNickname,
		Status:         string(status),
		StatusLabel:    status.Label(),
		StartDate:      startDate,
		EndDate:        endDate,
	}
}
