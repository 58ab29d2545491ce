package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tripmate/config"
	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/model/dto"
	"tripmate/internal/queue"
	"tripmate/internal/repository"
	"tripmate/pkg/aiplan"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/metrics"
	"tripmate/pkg/planparse"
	"tripmate/pkg/slider"
	"tripmate/pkg/snowflake"
	"tripmate/utils"
)

var (
	aiPlanService *AIPlanService
	aiPlanOnce    sync.Once
)

func AIPlan() *AIPlanService {
	aiPlanOnce.Do(func() {
		aiPlanService = &AIPlanService{
			userRepo:  repository.NewUserRepo(),
			planRepo:  repository.NewPlanRepo(),
			quotaRepo: repository.NewQuotaRepo(),
		}
	})
	return aiPlanService
}

type AIPlanService struct {
	userRepo  *repository.UserRepo
	planRepo  *repository.PlanRepo
	quotaRepo *repository.QuotaRepo
}

// Generate 调用 AI 生成一份行程并落库。
// 单日生成次数超过阈值后要先过滑块验证，防脚本刷额度；
// 额度扣减是原子条件更新，扣不动直接拒绝。
func (s *AIPlanService) Generate(ctx context.Context, userPublicID int64, remoteIP string, req dto.GeneratePlanRequest) (*dto.PlanDetail, error) {
	user, err := s.userRepo.GetByPublicID(ctx, userPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	if req.StartDate > req.EndDate {
		return nil, errors.AIPlanDateRangeBad
	}

	day := time.Now().In(utils.PlanLocation()).Format("2006-01-02")
	count, err := cache.GetDailyGenCount(ctx, user.PublicID, day)
	if err != nil {
		logger.Logger.Warn("Failed to read daily generation count",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
	}

	if count >= int64(config.Cfg.AIPlanSliderThreshold) {
		if err := s.verifySlider(ctx, user.PublicID, remoteIP, req.CaptchaVerifyParam); err != nil {
			return nil, err
		}
	}

	deducted, err := s.userRepo.DeductAIPlanQuota(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct quota: %w", err)
	}
	if !deducted {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordAIPlanQuotaDenied(ctx, user.PublicID)
		}
		if err := queue.PublishQuotaDepletedEvent(user.PublicID); err != nil {
			logger.Logger.Warn("Failed to publish quota depleted event",
				zap.Int64("user_id", userPublicID),
				zap.Error(err),
			)
		}
		return nil, errors.AIPlanQuotaExceeded
	}

	if _, err := cache.IncrDailyGenCount(ctx, user.PublicID, day); err != nil {
		logger.Logger.Warn("Failed to increment daily generation count",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
	}

	start := time.Now()
	raw, err := aiplan.GeneratePlan(ctx, aiplan.Request{
		Destination: req.Query,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Companions:  companionsText(req.Adults, req.Children),
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordAIPlanGenerated(ctx, config.Cfg.AIPlanProvider, "failure", elapsed)
		}
		// 生成失败把额度还回去
		s.refundQuota(ctx, user)
		logger.Logger.Error("AI plan generation failed",
			zap.Int64("user_id", userPublicID),
			zap.String("query", req.Query),
			zap.Error(err),
		)
		return nil, errors.AIPlanProviderFailure
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordAIPlanGenerated(ctx, config.Cfg.AIPlanProvider, "success", elapsed)
	}

	// 提供商原始响应原样落库，标题等元信息通过归一化层解出
	planPublicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan ID: %w", err)
	}

	// 提供商回复可能是围栏文本或响应信封，按 JSON 字符串落进 plan_data，
	// 读取时归一化层负责解包
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generated plan: %w", err)
	}

	plan := &model.TravelPlan{
		PublicID: planPublicID,
		UserID:   user.ID,
		PlanData: model.RawJSONB(encoded),
	}
	if len(req.FlightInfo) > 0 {
		plan.FlightInfo = model.RawJSONB(req.FlightInfo)
	}
	if len(req.AccommodationInfo) > 0 {
		plan.AccmoInfo = model.RawJSONB(req.AccommodationInfo)
	}

	it := planparse.Normalize(plan.ToRecord())
	plan.Name = it.Title
	if plan.Name == planparse.DefaultTitle && req.Query != "" {
		plan.Name = fmt.Sprintf("%s 여행", req.Query)
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save generated plan: %w", err)
	}

	remaining := user.AIPlanQuota - 1
	if err := s.quotaRepo.Record(ctx, &model.AIPlanTransaction{
		UserID:          user.ID,
		TransactionType: model.TransactionTypeDeduct,
		Reason:          "ai_generate",
		Amount:          1,
		BalanceAfter:    remaining,
	}); err != nil {
		logger.Logger.Warn("Failed to record quota transaction",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("AI plan generated",
		zap.Int64("user_id", userPublicID),
		zap.Int64("plan_id", planPublicID),
		zap.String("query", req.Query),
		zap.Float64("elapsed_seconds", elapsed),
	)

	return Plan().buildDetail(ctx, plan), nil
}

// Quota 查询剩余额度与滑块门槛状态
func (s *AIPlanService) Quota(ctx context.Context, userPublicID int64) (*dto.QuotaResponse, error) {
	user, err := s.userRepo.GetByPublicID(ctx, userPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	day := time.Now().In(utils.PlanLocation()).Format("2006-01-02")
	count, err := cache.GetDailyGenCount(ctx, user.PublicID, day)
	if err != nil {
		logger.Logger.Warn("Failed to read daily generation count",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
	}

	// 流水拿不到不影响额度查询
	var entries []dto.QuotaTransaction
	if txs, err := s.quotaRepo.ListByUser(ctx, user.ID, 10); err != nil {
		logger.Logger.Warn("Failed to list quota transactions",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
	} else {
		entries = make([]dto.QuotaTransaction, 0, len(txs))
		for _, tx := range txs {
			entries = append(entries, dto.QuotaTransaction{
				Type:      string(tx.TransactionType),
				Reason:    tx.Reason,
				Amount:    tx.Amount,
				CreatedAt: tx.CreatedAt.In(utils.PlanLocation()).Format(time.RFC3339),
			})
		}
	}

	return &dto.QuotaResponse{
		Remaining:       user.AIPlanQuota,
		SliderRequired:  count >= int64(config.Cfg.AIPlanSliderThreshold),
		TodayGenerated:  int(count),
		SliderThreshold: config.Cfg.AIPlanSliderThreshold,
		Transactions:    entries,
	}, nil
}

// VerifySlider 前置滑块验证，通过后发放一次性通行令牌，
// 客户端在随后的生成请求里带上即可免二次验证。
func (s *AIPlanService) VerifySlider(ctx context.Context, userPublicID int64, remoteIP, captchaVerifyParam string) (string, error) {
	if captchaVerifyParam == "" {
		return "", errors.AIPlanSliderRequired
	}

	passed, err := slider.Verify(ctx, captchaVerifyParam, remoteIP, "aiplan_generate")
	if err != nil {
		logger.Logger.Error("Slider verification error",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
		return "", errors.AIPlanSliderFailed
	}
	if !passed {
		return "", errors.AIPlanSliderFailed
	}

	passToken, err := cache.SetSliderPassToken(ctx, userPublicID)
	if err != nil {
		return "", fmt.Errorf("failed to issue pass token: %w", err)
	}
	return passToken, nil
}

// verifySlider 高频生成的滑块验证。一次验证换一个一次性通行令牌，
// 本次请求直接消费；带 pass token 的请求跳过远端校验。
func (s *AIPlanService) verifySlider(ctx context.Context, userPublicID int64, remoteIP, captchaVerifyParam string) error {
	if captchaVerifyParam == "" {
		return errors.AIPlanSliderRequired
	}

	// 先试本地通行令牌，避免重复打验证服务
	if cache.ConsumeSliderPassToken(ctx, userPublicID, captchaVerifyParam) {
		return nil
	}

	passed, err := slider.Verify(ctx, captchaVerifyParam, remoteIP, "aiplan_generate")
	if err != nil {
		logger.Logger.Error("Slider verification error",
			zap.Int64("user_id", userPublicID),
			zap.Error(err),
		)
		return errors.AIPlanSliderFailed
	}
	if !passed {
		return errors.AIPlanSliderFailed
	}

	return nil
}

// companionsText 把人数转成提示词里的同行人描述
func companionsText(adults, children int) string {
	if adults <= 0 && children <= 0 {
		return ""
	}
	if children > 0 {
		return fmt.Sprintf("성인 %d명, 어린이 %d명", adults, children)
	}
	return fmt.Sprintf("성인 %d명", adults)
}

func (s *AIPlanService) refundQuota(ctx context.Context, user *model.User) {
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"ai_plan_quota": gorm.Expr("ai_plan_quota + 1"),
	}); err != nil {
		logger.Logger.Warn("Failed to refund quota",
			zap.Int64("user_id", user.PublicID),
			zap.Error(err),
		)
		return
	}

	if err := s.quotaRepo.Record(ctx, &model.AIPlanTransaction{
		UserID:          user.ID,
		TransactionType: model.TransactionTypeGrant,
		Reason:          "generate_failed_refund",
		Amount:          1,
		BalanceAfter:    user.AIPlanQuota,
	}); err != nil {
		logger.Logger.Warn("Failed to record refund transaction",
			zap.Int64("user_id", user.PublicID),
			zap.Error(err),
		)
	}
}
