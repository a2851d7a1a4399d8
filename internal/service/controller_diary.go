package service

import (
	"errors"
	"strings"
	"time"

	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

// overviewDays 首页日期条展示的天数
const overviewDays = 7

// Draft 是图片分析后、写入日记前的可编辑结果。
// Original 保留模型原始估算，份量修改总是相对于它缩放。
type Draft struct {
	Original  model.FoodAnalysis `json:"original"`
	Current   model.FoodAnalysis `json:"current"`
	Impact    string             `json:"impact,omitempty"`
	CreatedAt int64              `json:"createdAt"`
}

func (d Draft) clone() Draft {
	out := d
	out.Original.Items = append([]model.FoodItem(nil), d.Original.Items...)
	out.Current.Items = append([]model.FoodItem(nil), d.Current.Items...)
	return out
}

// DailySummary 汇总某一天的摄入与目标
type DailySummary struct {
	Date      string             `json:"date"`
	Totals    model.Macros       `json:"totals"`
	Targets   model.Macros       `json:"targets"`
	Progress  model.Macros       `json:"progress"`
	Remaining model.Macros       `json:"remaining"`
	Entries   []model.DiaryEntry `json:"entries"`
}

// DayOverview 是日期条中的一天
type DayOverview struct {
	Date   string       `json:"date"`
	Totals model.Macros `json:"totals"`
	Today  bool         `json:"today"`
}

// Entries 返回完整日记（最新在前）。
func (c *Controller) Entries() ([]model.DiaryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.requireSessionLocked(); err != nil {
		return nil, err
	}
	return cloneEntries(c.entries), nil
}

func (c *Controller) resolveDayLocked(day string) (string, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		return c.pref.DayKey(c.now()), nil
	}
	if _, err := c.pref.ParseDayKey(day, c.loc); err != nil {
		return "", newValidationError("date", "Data inválida.")
	}
	return day, nil
}

func (c *Controller) targetsLocked() model.Macros {
	if c.profile == nil {
		return nutrition.DefaultTargets
	}
	return c.profile.Targets
}

// DailySummary 计算指定日期（为空时为今天）的合计、进度与剩余量。
func (c *Controller) DailySummary(day string) (DailySummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireSessionLocked(); err != nil {
		return DailySummary{}, err
	}
	day, err := c.resolveDayLocked(day)
	if err != nil {
		return DailySummary{}, err
	}

	entries := make([]model.DiaryEntry, 0)
	for _, entry := range c.entries {
		if entry.Date == day {
			entries = append(entries, entry)
		}
	}
	totals := nutrition.DayTotals(c.entries, day)
	targets := c.targetsLocked()

	return DailySummary{
		Date:    day,
		Totals:  totals,
		Targets: targets,
		Progress: model.Macros{
			Calories: nutrition.Progress(totals.Calories, targets.Calories),
			Protein:  nutrition.Progress(totals.Protein, targets.Protein),
			Carbs:    nutrition.Progress(totals.Carbs, targets.Carbs),
			Fat:      nutrition.Progress(totals.Fat, targets.Fat),
		},
		Remaining: nutrition.Remaining(targets, totals),
		Entries:   cloneEntries(entries),
	}, nil
}

// WeekOverview 返回今天及之前六天的每日合计，按时间正序。
func (c *Controller) WeekOverview() ([]DayOverview, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireSessionLocked(); err != nil {
		return nil, err
	}
	now := c.now()
	today := c.pref.DayKey(now)
	days := c.pref.LastDays(now, overviewDays)
	overview := make([]DayOverview, 0, len(days))
	for _, day := range days {
		overview = append(overview, DayOverview{
			Date:   day,
			Totals: nutrition.DayTotals(c.entries, day),
			Today:  day == today,
		})
	}
	return overview, nil
}

// RemoveEntry 按 id 删除日记记录。
func (c *Controller) RemoveEntry(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.requireSessionLocked()
	if err != nil {
		return err
	}
	entries, err := c.diary.Remove(session.ID, id)
	if err != nil {
		return err
	}
	c.entries = entries
	return nil
}

// EntryUpdate 编辑日记记录；Totals 直接覆盖，Time 可选。
type EntryUpdate struct {
	Totals model.Macros `json:"totals"`
	Time   *string      `json:"time"`
}

// UpdateEntry 修改一条日记记录并保存。
func (c *Controller) UpdateEntry(id int64, update EntryUpdate) (model.DiaryEntry, error) {
	if err := validateMacros(update.Totals); err != nil {
		return model.DiaryEntry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.requireSessionLocked()
	if err != nil {
		return model.DiaryEntry{}, err
	}

	var target *model.DiaryEntry
	for i := range c.entries {
		if c.entries[i].ID == id {
			entry := c.entries[i]
			target = &entry
			break
		}
	}
	if target == nil {
		return model.DiaryEntry{}, ErrEntryNotFound
	}

	target.Totals = update.Totals
	target.Items = append([]model.FoodItem(nil), target.Items...)
	if update.Time != nil {
		value := strings.TrimSpace(*update.Time)
		if _, err := time.Parse(c.pref.TimeLayout, value); err != nil {
			return model.DiaryEntry{}, newValidationError("time", "Horário inválido.")
		}
		target.Time = value
	}

	entries, err := c.diary.Update(session.ID, *target)
	if err != nil {
		return model.DiaryEntry{}, err
	}
	c.entries = entries
	return *target, nil
}

// Draft 返回当前待确认的分析。
func (c *Controller) Draft() (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireSessionLocked(); err != nil {
		return Draft{}, err
	}
	if c.draft == nil {
		return Draft{}, ErrNoDraft
	}
	return c.draft.clone(), nil
}

// EditDraftItem 修改某个食物的重量，营养值相对原始估算等比缩放。
func (c *Controller) EditDraftItem(index int, weight float64) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireSessionLocked(); err != nil {
		return Draft{}, err
	}
	if c.draft == nil {
		return Draft{}, ErrNoDraft
	}

	current, err := nutrition.EditPortion(c.draft.Original, c.draft.Current, index, weight)
	if err != nil {
		switch {
		case errors.Is(err, nutrition.ErrItemIndex):
			return Draft{}, newValidationError("index", "Item inexistente.")
		case errors.Is(err, nutrition.ErrInvalidPortion):
			return Draft{}, newValidationError("weight", "Informe um peso válido.")
		}
		return Draft{}, err
	}
	c.draft.Current = current
	c.draft.Impact = ""
	return c.draft.clone(), nil
}

// DiscardDraft 丢弃待确认的分析。
func (c *Controller) DiscardDraft() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireSessionLocked(); err != nil {
		return err
	}
	c.draft = nil
	return nil
}

// CommitDraft 将当前分析写入日记并清除草稿。
func (c *Controller) CommitDraft() (model.DiaryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.requireSessionLocked()
	if err != nil {
		return model.DiaryEntry{}, err
	}
	if c.draft == nil {
		return model.DiaryEntry{}, ErrNoDraft
	}

	now := c.now()
	items := append([]model.FoodItem(nil), c.draft.Current.Items...)
	entry := model.DiaryEntry{
		ID:        now.UnixMilli(),
		Time:      c.pref.ClockTime(now),
		Date:      c.pref.DayKey(now),
		Timestamp: now.UnixMilli(),
		Totals:    nutrition.SumItems(items),
		Items:     items,
	}

	entries, saved, err := c.diary.Append(session.ID, entry)
	if err != nil {
		return model.DiaryEntry{}, err
	}
	c.entries = entries
	c.draft = nil
	return saved, nil
}
