package schedule

// 提醒调度器：定期扫描行程，物化提醒任务并投递到期窗口内的延迟消息。
// 解决 RabbitMQ 延迟消息最多只能延迟 1 天的问题。

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/queue"
	"tripmate/internal/repository"
	"tripmate/pkg/logger"
	"tripmate/pkg/metrics"
	"tripmate/pkg/planparse"
	"tripmate/pkg/snowflake"
	"tripmate/utils"
)

const (
	// tripStartHour 出发当天的提醒发送时刻（行程时区）
	tripStartHour = 9

	// dispatchLookback 补偿窗口，把漏发的任务捞回来立即投递
	dispatchLookback = 24 * time.Hour

	scanLockKey     = "reminder:scan"
	dispatchLockKey = "reminder:dispatch"
)

var (
	reminderSchedulerOnce sync.Once
	reminderSchedulerInst *ReminderScheduler
)

// ReminderScheduler 提醒调度器
type ReminderScheduler struct {
	logger       *zap.Logger
	planRepo     *repository.PlanRepo
	userRepo     *repository.UserRepo
	reminderRepo *repository.ReminderRepo

	scanRunning     bool
	scanMu          sync.Mutex
	dispatchRunning bool
	dispatchMu      sync.Mutex
	lastScanTime    time.Time
}

// GetReminderScheduler 获取提醒调度器单例
func GetReminderScheduler() *ReminderScheduler {
	reminderSchedulerOnce.Do(func() {
		reminderSchedulerInst = &ReminderScheduler{
			logger:       logger.Logger,
			planRepo:     repository.NewPlanRepo(),
			userRepo:     repository.NewUserRepo(),
			reminderRepo: repository.NewReminderRepo(),
		}
	})
	return reminderSchedulerInst
}

// ScanPlans 扫描全部可提醒的行程，物化提醒任务（定时任务调用）。
// 任务表的槽位唯一索引保证同一活动不论扫多少轮只落一条。
func (s *ReminderScheduler) ScanPlans(ctx context.Context) error {
	s.scanMu.Lock()
	if s.scanRunning {
		s.scanMu.Unlock()
		s.logger.Info("Reminder scan already running, skipping")
		return nil
	}
	s.scanRunning = true
	s.scanMu.Unlock()

	defer func() {
		s.scanMu.Lock()
		s.scanRunning = false
		s.scanMu.Unlock()
	}()

	// 多实例部署时只有一个实例执行本轮扫描
	locked, err := cache.TryLock(ctx, scanLockKey, 4*time.Minute)
	if err != nil {
		s.logger.Warn("Failed to acquire scan lock, proceeding anyway", zap.Error(err))
	} else if !locked {
		s.logger.Info("Another instance is scanning, skipping")
		return nil
	} else {
		defer func() {
			if err := cache.Unlock(ctx, scanLockKey); err != nil {
				s.logger.Warn("Failed to release scan lock", zap.Error(err))
			}
		}()
	}

	startTime := time.Now()
	s.lastScanTime = startTime

	plans, err := s.planRepo.ListRemindable(ctx)
	if err != nil {
		s.logger.Error("Failed to list remindable plans", zap.Error(err))
		return fmt.Errorf("failed to list remindable plans: %w", err)
	}

	if len(plans) == 0 {
		s.logger.Info("No remindable plans found")
		return nil
	}

	s.logger.Info("Scanning plans for reminder tasks",
		zap.Int("plan_count", len(plans)),
	)

	var created, failed int
	users := make(map[int64]*model.User)

	for i := range plans {
		plan := &plans[i]

		user, ok := users[plan.UserID]
		if !ok {
			user, err = s.userRepo.GetByID(ctx, plan.UserID)
			if err != nil {
				s.logger.Warn("Failed to query plan owner",
					zap.Int64("plan_id", plan.PublicID),
					zap.Int64("user_id", plan.UserID),
					zap.Error(err),
				)
				failed++
				continue
			}
			users[plan.UserID] = user
		}
		if user == nil || user.Phone == "" {
			continue
		}

		n, err := s.EnsurePlanReminders(ctx, plan, user)
		if err != nil {
			s.logger.Warn("Failed to ensure plan reminders",
				zap.Int64("plan_id", plan.PublicID),
				zap.Error(err),
			)
			failed++
			continue
		}
		created += n
	}

	s.logger.Info("Reminder scan completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("plan_count", len(plans)),
		zap.Int("tasks_created", created),
		zap.Int("plan_failures", failed),
	)

	if failed > 0 {
		return fmt.Errorf("reminder scan completed with %d plan failures", failed)
	}

	return nil
}

// EnsurePlanReminders 为单个行程物化提醒任务，返回新建任务数。
// 行程保存后立即调用一次，之后的扫描轮次靠唯一索引去重。
func (s *ReminderScheduler) EnsurePlanReminders(ctx context.Context, plan *model.TravelPlan, user *model.User) (int, error) {
	it := planparse.Normalize(plan.ToRecord())
	if len(it.Days) == 0 {
		return 0, nil
	}

	loc := utils.PlanLocation()
	now := time.Now().In(loc)
	baseYear := planparse.BaseYear(it.Days, now)

	var created int

	// 出发提醒：出发当天 09:00。时刻已过但行程还没开始就立即补发，开始了就不再提醒。
	startDate, _ := planparse.TripDates(it.Days, now)
	if startDate != "" {
		if remindAt, ok := planparse.TripStartRemindAt(startDate, tripStartHour, now, loc); ok {
			ok, err := s.createTask(ctx, plan, user, model.ReminderKindTripStart, -1, -1, remindAt,
				fmt.Sprintf("[여행 알림] '%s' 여행이 %s에 시작됩니다. 즐거운 여행 되세요!", planparse.StripDateFromTitle(it.Title), startDate))
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}

	// 活动提醒：活动开始前 lead 分钟，已过期的槽位不补
	lead := time.Duration(config.Cfg.ReminderLeadMinutes) * time.Minute
	for di, day := range it.Days {
		date := planparse.ResolveDayDate(day, baseYear)
		if date == "" {
			continue
		}

		for ai, act := range day.Schedules {
			if act.Time == "" || act.Name == "" {
				continue
			}
			remindAt, ok := planparse.ActivityRemindAt(date, act.Time, lead, now, loc)
			if !ok {
				continue
			}

			ok, err := s.createTask(ctx, plan, user, model.ReminderKindActivity, di, ai, remindAt,
				fmt.Sprintf("[여행 알림] %s %s '%s' 일정이 곧 시작됩니다.", date, act.Time, act.Name))
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}

	return created, nil
}

func (s *ReminderScheduler) createTask(
	ctx context.Context,
	plan *model.TravelPlan,
	user *model.User,
	kind model.ReminderKind,
	dayIndex, activityIndex int,
	scheduledAt time.Time,
	message string,
) (bool, error) {
	taskCode, err := snowflake.NextID()
	if err != nil {
		return false, fmt.Errorf("failed to generate task code: %w", err)
	}

	task := &model.ReminderTask{
		TaskCode:      taskCode,
		UserID:        user.ID,
		PlanID:        plan.ID,
		DayIndex:      dayIndex,
		ActivityIndex: activityIndex,
		Kind:          kind,
		Channel:       user.ReminderChannel,
		Phone:         user.Phone,
		Message:       message,
		Status:        model.ReminderTaskStatusPending,
		ScheduledAt:   scheduledAt,
	}

	inserted, err := s.reminderRepo.CreateIfAbsent(ctx, task)
	if err != nil {
		return false, fmt.Errorf("failed to create reminder task: %w", err)
	}
	if !inserted {
		return false, nil
	}

	if m := metrics.GetMetrics(); m != nil {
		m.RecordReminderScheduled(ctx, string(kind))
	}

	s.logger.Debug("Reminder task created",
		zap.Int64("task_code", taskCode),
		zap.Int64("plan_id", plan.PublicID),
		zap.String("kind", string(kind)),
		zap.Time("scheduled_at", scheduledAt),
	)

	return true, nil
}

// DispatchDueReminders 把投递窗口内的待发任务发到延迟交换机（定时任务调用）。
// timeWindow: 向前看的窗口，例如 10 分钟。
func (s *ReminderScheduler) DispatchDueReminders(ctx context.Context, timeWindow time.Duration) error {
	s.dispatchMu.Lock()
	if s.dispatchRunning {
		s.dispatchMu.Unlock()
		s.logger.Info("Reminder dispatch already running, skipping")
		return nil
	}
	s.dispatchRunning = true
	s.dispatchMu.Unlock()

	defer func() {
		s.dispatchMu.Lock()
		s.dispatchRunning = false
		s.dispatchMu.Unlock()
	}()

	locked, err := cache.TryLock(ctx, dispatchLockKey, 2*time.Minute)
	if err != nil {
		s.logger.Warn("Failed to acquire dispatch lock, proceeding anyway", zap.Error(err))
	} else if !locked {
		s.logger.Info("Another instance is dispatching, skipping")
		return nil
	} else {
		defer func() {
			if err := cache.Unlock(ctx, dispatchLockKey); err != nil {
				s.logger.Warn("Failed to release dispatch lock", zap.Error(err))
			}
		}()
	}

	now := time.Now()
	tasks, err := s.reminderRepo.ListDueInWindow(ctx, now.Add(-dispatchLookback), now.Add(timeWindow))
	if err != nil {
		s.logger.Error("Failed to query due reminder tasks", zap.Error(err))
		return fmt.Errorf("failed to query due reminder tasks: %w", err)
	}

	if len(tasks) == 0 {
		return nil
	}

	s.logger.Info("Dispatching due reminder tasks",
		zap.Int("task_count", len(tasks)),
		zap.Duration("time_window", timeWindow),
	)

	if m := metrics.GetMetrics(); m != nil {
		m.SetReminderQueueLength(ctx, queue.ReminderDeliveryQueue, int64(len(tasks)))
	}

	var published, deduped, failures int

	for i := range tasks {
		task := &tasks[i]

		// SETNX 槽位标记挡住重复投递，消费端还有任务状态 CAS 兜底
		first, err := cache.MarkReminderScheduled(ctx, task.PlanID, task.DayIndex, task.ActivityIndex, string(task.Kind))
		if err != nil {
			s.logger.Warn("Failed to mark reminder slot, publishing anyway",
				zap.Int64("task_code", task.TaskCode),
				zap.Error(err),
			)
		} else if !first {
			if m := metrics.GetMetrics(); m != nil {
				m.RecordReminderDeduplicated(ctx, string(task.Kind))
			}
			deduped++
			continue
		}

		sent, err := queue.ScheduleReminderDeliveryIfDue(task, now)
		if err != nil {
			s.logger.Error("Failed to publish reminder delivery",
				zap.Int64("task_code", task.TaskCode),
				zap.Int64("plan_id", task.PlanID),
				zap.Error(err),
			)
			// 取消槽位标记，下一轮重试
			if unmarkErr := cache.UnmarkReminderScheduled(ctx, task.PlanID, task.DayIndex, task.ActivityIndex, string(task.Kind)); unmarkErr != nil {
				s.logger.Warn("Failed to unmark reminder slot",
					zap.Int64("task_code", task.TaskCode),
					zap.Error(unmarkErr),
				)
			}
			failures++
			continue
		}
		if sent {
			published++
		}
	}

	s.logger.Info("Reminder dispatch completed",
		zap.Int("published", published),
		zap.Int("deduplicated", deduped),
		zap.Int("failures", failures),
	)

	if failures > 0 {
		return fmt.Errorf("reminder dispatch completed with %d failures", failures)
	}

	return nil
}
