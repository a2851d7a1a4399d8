package service

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

// CompleteOnboarding 根据问卷生成档案并保存，已有档案会被覆盖。
func (c *Controller) CompleteOnboarding(input OnboardingInput) (model.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.requireSessionLocked()
	if err != nil {
		return model.Profile{}, err
	}

	profile, err := BuildProfile(input, c.now(), c.pref)
	if err != nil {
		return model.Profile{}, err
	}
	if err := c.profiles.Save(session.ID, profile); err != nil {
		return model.Profile{}, err
	}
	c.profile = &profile
	c.strategyFailed = false
	return cloneProfile(profile), nil
}

// Profile 返回当前档案。
func (c *Controller) Profile() (model.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, profile, err := c.requireProfileLocked()
	return profile, err
}

// Age 根据档案生日计算年龄。
func (c *Controller) Age() (int, error) {
	profile, err := c.Profile()
	if err != nil {
		return 0, err
	}
	return nutrition.Age(profile.BirthDate, c.now()), nil
}

// ProfileUpdate 只修改非 nil 字段。
type ProfileUpdate struct {
	Name      *string         `json:"name"`
	BirthDate *string         `json:"birthDate"`
	Height    *string         `json:"height"`
	Goal      *model.Goal     `json:"goal"`
	Activity  *model.Activity `json:"activity"`
}

// UpdateProfile 保存资料修改；目标变化时尝试刷新饮食策略，
// 冷却期或协作方失败只会产生提示，不影响资料保存。
func (c *Controller) UpdateProfile(ctx context.Context, update ProfileUpdate) (model.Profile, error) {
	c.mu.Lock()
	session, profile, err := c.requireProfileLocked()
	if err != nil {
		c.mu.Unlock()
		return model.Profile{}, err
	}

	goalChanged := false
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			c.mu.Unlock()
			return model.Profile{}, newValidationError("name", "Informe seu nome.")
		}
		profile.Name = name
	}
	if update.BirthDate != nil {
		birthDate := strings.TrimSpace(*update.BirthDate)
		if err := validateBirthDate(birthDate, c.now()); err != nil {
			c.mu.Unlock()
			return model.Profile{}, err
		}
		profile.BirthDate = birthDate
	}
	if update.Height != nil {
		height := strings.TrimSpace(*update.Height)
		if v, err := ParseDecimal(height); err != nil || v <= 0 {
			c.mu.Unlock()
			return model.Profile{}, newValidationError("height", "Informe uma altura válida.")
		}
		profile.Height = height
	}
	if update.Activity != nil {
		if !update.Activity.Valid() {
			c.mu.Unlock()
			return model.Profile{}, newValidationError("activity", "Nível de atividade inválido.")
		}
		profile.Activity = *update.Activity
	}
	if update.Goal != nil {
		if !update.Goal.Valid() {
			c.mu.Unlock()
			return model.Profile{}, newValidationError("goal", "Objetivo inválido.")
		}
		goalChanged = *update.Goal != profile.Goal
		profile.Goal = *update.Goal
	}

	if err := c.profiles.Save(session.ID, profile); err != nil {
		c.mu.Unlock()
		return model.Profile{}, err
	}
	c.profile = &profile
	c.mu.Unlock()

	if goalChanged {
		updated, err := c.RefreshStrategy(ctx)
		if err == nil {
			return updated, nil
		}
		var cooldown *CooldownError
		var collaborator *CollaboratorError
		if !errors.As(err, &cooldown) && !errors.As(err, &collaborator) && !errors.Is(err, ErrRequestInFlight) {
			return model.Profile{}, err
		}
	}
	return c.Profile()
}

// UpdateTargets 手动设置每日目标。
func (c *Controller) UpdateTargets(targets model.Macros) (model.Profile, error) {
	if err := validateMacros(targets); err != nil {
		return model.Profile{}, err
	}
	if targets.Calories <= 0 {
		return model.Profile{}, newValidationError("calories", "Meta de calorias deve ser positiva.")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, profile, err := c.requireProfileLocked()
	if err != nil {
		return model.Profile{}, err
	}
	profile.Targets = targets
	if err := c.profiles.Save(session.ID, profile); err != nil {
		return model.Profile{}, err
	}
	c.profile = &profile
	return cloneProfile(profile), nil
}

// SetAvatar 压缩头像并保存到档案。
func (c *Controller) SetAvatar(r io.Reader) (model.Profile, error) {
	prepared, err := c.images.PrepareAvatar(r)
	if err != nil {
		return model.Profile{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, profile, err := c.requireProfileLocked()
	if err != nil {
		return model.Profile{}, err
	}
	profile.Avatar = prepared.DataURL
	if err := c.profiles.Save(session.ID, profile); err != nil {
		return model.Profile{}, err
	}
	c.profile = &profile
	return cloneProfile(profile), nil
}

// RecordWeight 追加体重记录，不重新计算目标。
func (c *Controller) RecordWeight(weight float64) (model.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, profile, err := c.requireProfileLocked()
	if err != nil {
		return model.Profile{}, err
	}
	updated, err := c.profiles.AppendWeightRecord(session.ID, profile, weight, c.now(), c.pref)
	if err != nil {
		return model.Profile{}, err
	}
	c.profile = &updated
	return cloneProfile(updated), nil
}

func validateMacros(m model.Macros) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", m.Calories},
		{"protein", m.Protein},
		{"carbs", m.Carbs},
		{"fat", m.Fat},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return newValidationError(f.name, "Valores devem ser números não negativos.")
		}
	}
	return nil
}
