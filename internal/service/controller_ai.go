package service

import (
	"context"
	"errors"
	"io"

	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

// AnalyzeImage 压缩图片后请求协作方识别食物，结果成为新的草稿。
func (c *Controller) AnalyzeImage(ctx context.Context, r io.Reader, description string) (Draft, error) {
	c.mu.Lock()
	if _, err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return Draft{}, err
	}
	generation, err := c.beginRequestLocked(requestAnalysis)
	c.mu.Unlock()
	if err != nil {
		return Draft{}, err
	}
	defer c.endRequest(requestAnalysis)

	prepared, err := c.images.PrepareMeal(r)
	if err != nil {
		return Draft{}, err
	}

	analysis, err := c.ai.AnalyzeFoodImage(ctx, prepared.DataURL, description)
	if err != nil {
		return Draft{}, c.failRequest("analysis", generation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) {
		return Draft{}, ErrSessionChanged
	}

	analysis.Totals = nutrition.SumItems(analysis.Items)
	c.draft = &Draft{
		Original:  analysis,
		Current:   model.FoodAnalysis{Items: append([]model.FoodItem(nil), analysis.Items...), Totals: analysis.Totals},
		CreatedAt: c.now().UnixMilli(),
	}
	return c.draft.clone(), nil
}

// failRequest 统一处理 AI 调用失败：非校验类错误包装为 CollaboratorError 并给出提示。
func (c *Controller) failRequest(kind string, generation uint64, err error) error {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return err
	}
	wrapped := collaboratorError(kind, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) {
		return ErrSessionChanged
	}
	c.setNoticeLocked(NoticeError, locale.Pick(c.language, FallbackMessageEnglish, FallbackMessage))
	return wrapped
}

// MealImpact 评估当前草稿对目标的影响，结果缓存在草稿上。
func (c *Controller) MealImpact(ctx context.Context) (string, error) {
	c.mu.Lock()
	if _, err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if c.draft == nil {
		c.mu.Unlock()
		return "", ErrNoDraft
	}
	totals := c.draft.Current.Totals
	goal := model.GoalMaintain
	if c.profile != nil {
		goal = c.profile.Goal
	}
	generation, err := c.beginRequestLocked(requestImpact)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	defer c.endRequest(requestImpact)

	impact, err := c.ai.AnalyzeMealImpact(ctx, totals, goal)
	if err != nil {
		return "", c.failRequest("impact", generation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) {
		return "", ErrSessionChanged
	}
	// 草稿在请求期间被修改或丢弃时不回写
	if c.draft != nil && c.draft.Current.Totals == totals {
		c.draft.Impact = impact
	}
	return impact, nil
}

// Insights 基于最近 10 条日记生成最多 3 条洞察，日记为空时不调用协作方。
func (c *Controller) Insights(ctx context.Context) ([]model.Insight, error) {
	c.mu.Lock()
	if _, err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if len(c.entries) == 0 {
		c.mu.Unlock()
		return []model.Insight{}, nil
	}
	recent := c.entries
	if len(recent) > insightEntryLimit {
		recent = recent[:insightEntryLimit]
	}
	recent = cloneEntries(recent)
	generation, err := c.beginRequestLocked(requestInsights)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer c.endRequest(requestInsights)

	insights, err := c.ai.GenerateInsights(ctx, recent)
	if err != nil {
		return nil, c.failRequest("insights", generation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) {
		return nil, ErrSessionChanged
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights, nil
}

// Suggestions 根据指定日期的剩余营养素请求餐食建议。
func (c *Controller) Suggestions(ctx context.Context, day string) (string, error) {
	c.mu.Lock()
	if _, err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	day, err := c.resolveDayLocked(day)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	remaining := nutrition.Remaining(c.targetsLocked(), nutrition.DayTotals(c.entries, day))
	goal := model.GoalMaintain
	if c.profile != nil {
		goal = c.profile.Goal
	}
	generation, err := c.beginRequestLocked(requestSuggestions)
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	defer c.endRequest(requestSuggestions)

	suggestions, err := c.ai.MealSuggestions(ctx, remaining, goal)
	if err != nil {
		return "", c.failRequest("suggestions", generation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) {
		return "", ErrSessionChanged
	}
	return suggestions, nil
}

// StrategyStatus 返回策略刷新门控的当前状态。
func (c *Controller) StrategyStatus() (StrategyStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.requireSessionLocked(); err != nil {
		return StrategyStatus{}, err
	}
	return EvaluateStrategy(c.profile, c.now(), c.inFlight[requestStrategy], c.strategyFailed), nil
}

// RefreshStrategy 冷却期外请求新的饮食策略。冷却期内返回 CooldownError 并给出提示，
// 不调用协作方；失败时进入 error 状态，可立即重试。
func (c *Controller) RefreshStrategy(ctx context.Context) (model.Profile, error) {
	c.mu.Lock()
	session, profile, err := c.requireProfileLocked()
	if err != nil {
		c.mu.Unlock()
		return model.Profile{}, err
	}
	now := c.now()
	if days := CooldownDaysRemaining(profile.LastStrategyUpdate, now); days > 0 {
		cooldown := &CooldownError{DaysRemaining: days}
		c.setNoticeLocked(NoticeInfo, locale.Pick(c.language, cooldown.EnglishNotice(), cooldown.Notice()))
		c.mu.Unlock()
		return model.Profile{}, cooldown
	}
	entries := cloneEntries(c.entries)
	generation, err := c.beginRequestLocked(requestStrategy)
	c.mu.Unlock()
	if err != nil {
		return model.Profile{}, err
	}
	defer c.endRequest(requestStrategy)

	updated, err := c.strategy.Refresh(ctx, profile, entries, now)
	if err != nil {
		var cooldown *CooldownError
		if errors.As(err, &cooldown) {
			return model.Profile{}, err
		}
		wrapped := c.failRequest("strategy", generation, err)
		c.mu.Lock()
		if !c.staleLocked(generation) {
			c.strategyFailed = true
		}
		c.mu.Unlock()
		return model.Profile{}, wrapped
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(generation) || c.profile == nil {
		return model.Profile{}, ErrSessionChanged
	}
	// 请求期间档案可能被修改，只合并策略字段
	merged := cloneProfile(*c.profile)
	merged.DietStrategy = updated.DietStrategy
	merged.LastStrategyUpdate = updated.LastStrategyUpdate
	if err := c.profiles.Save(session.ID, merged); err != nil {
		c.strategyFailed = true
		return model.Profile{}, err
	}
	c.profile = &merged
	c.strategyFailed = false
	return cloneProfile(merged), nil
}

// ApplyRecommendedTargets 用策略推荐的目标覆盖当前目标；没有推荐时不做任何修改。
func (c *Controller) ApplyRecommendedTargets() (model.Profile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, profile, err := c.requireProfileLocked()
	if err != nil {
		return model.Profile{}, false, err
	}
	updated, applied := ApplyRecommendedTargets(profile)
	if !applied {
		return profile, false, nil
	}
	if err := c.profiles.Save(session.ID, updated); err != nil {
		return model.Profile{}, false, err
	}
	c.profile = &updated
	c.setNoticeLocked(NoticeSuccess, locale.Pick(c.language, "Targets updated successfully!", "Metas atualizadas com sucesso!"))
	return cloneProfile(updated), true, nil
}
