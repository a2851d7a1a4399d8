package service

import (
	"context"
	"time"

	"github.com/nutrascan/internal/model"
)

// StrategyCooldown 两次策略刷新之间的最短间隔
const StrategyCooldown = 30 * 24 * time.Hour

// StrategyState 策略刷新门控的状态
type StrategyState string

const (
	StrategyEligible StrategyState = "eligible"
	StrategyCooling  StrategyState = "cooldown"
	StrategyFetching StrategyState = "fetching"
	StrategyFailed   StrategyState = "error"
)

// StrategyStatus 描述当前是否可以刷新策略
type StrategyStatus struct {
	State           StrategyState `json:"state"`
	DaysRemaining   int           `json:"daysRemaining,omitempty"`
	NextAvailableAt int64         `json:"nextAvailableAt,omitempty"`
}

// CooldownDaysRemaining 返回距离下次可刷新的天数（向上取整），0 表示可以刷新。
func CooldownDaysRemaining(lastUpdate int64, now time.Time) int {
	if lastUpdate <= 0 {
		return 0
	}
	elapsed := now.Sub(time.UnixMilli(lastUpdate))
	if elapsed >= StrategyCooldown {
		return 0
	}
	remaining := StrategyCooldown - elapsed
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// EvaluateStrategy 根据档案和最近一次请求结果计算门控状态。
func EvaluateStrategy(profile *model.Profile, now time.Time, fetching, failed bool) StrategyStatus {
	if fetching {
		return StrategyStatus{State: StrategyFetching}
	}
	if profile != nil {
		if days := CooldownDaysRemaining(profile.LastStrategyUpdate, now); days > 0 {
			return StrategyStatus{
				State:           StrategyCooling,
				DaysRemaining:   days,
				NextAvailableAt: time.UnixMilli(profile.LastStrategyUpdate).Add(StrategyCooldown).UnixMilli(),
			}
		}
	}
	if failed {
		return StrategyStatus{State: StrategyFailed}
	}
	return StrategyStatus{State: StrategyEligible}
}

// StrategyWindow 返回最近 30 天内的日记记录，保持原顺序。
func StrategyWindow(entries []model.DiaryEntry, now time.Time) []model.DiaryEntry {
	cutoff := now.Add(-StrategyCooldown).UnixMilli()
	window := make([]model.DiaryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Timestamp >= cutoff {
			window = append(window, entry)
		}
	}
	return window
}

// StrategyService 在冷却期之外请求新的饮食策略。
type StrategyService struct {
	ai NutritionAI
}

// NewStrategyService 构造 StrategyService。
func NewStrategyService(ai NutritionAI) *StrategyService {
	return &StrategyService{ai: ai}
}

// Refresh 冷却期内直接返回 CooldownError，不会调用协作方。
// 成功时返回写入策略与刷新时间后的档案副本，调用方负责持久化。
func (s *StrategyService) Refresh(ctx context.Context, profile model.Profile, entries []model.DiaryEntry, now time.Time) (model.Profile, error) {
	if days := CooldownDaysRemaining(profile.LastStrategyUpdate, now); days > 0 {
		return profile, &CooldownError{DaysRemaining: days}
	}

	strategy, err := s.ai.DietStrategy(ctx, profile, StrategyWindow(entries, now))
	if err != nil {
		return profile, collaboratorError("strategy", err)
	}

	updated := profile
	updated.DietStrategy = &strategy
	updated.LastStrategyUpdate = now.UnixMilli()
	return updated, nil
}

// ApplyRecommendedTargets 将策略推荐的目标原样覆盖到档案，没有推荐时返回 false。
func ApplyRecommendedTargets(profile model.Profile) (model.Profile, bool) {
	if profile.DietStrategy == nil || profile.DietStrategy.RecommendedTargets == nil {
		return profile, false
	}
	updated := profile
	updated.Targets = *profile.DietStrategy.RecommendedTargets
	return updated, true
}
