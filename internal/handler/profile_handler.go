package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/service"
	"github.com/nutrascan/internal/view"
)

// GetOnboardingQuestions 返回引导问卷的步骤与选项
func (a *API) GetOnboardingQuestions(c *gin.Context) {
	language := a.requestLocale(c).Language
	c.JSON(http.StatusOK, gin.H{
		"questions":   view.OnboardingQuestions(language),
		"goals":       view.GoalOptions(language),
		"activities":  view.ActivityOptions(language),
		"descriptors": view.DescriptorOptions(),
	})
}

// CompleteOnboarding 根据问卷回答创建档案
func (a *API) CompleteOnboarding(c *gin.Context) {
	var payload service.OnboardingInput
	if !bindJSON(c, &payload, a.text(c, "Please answer the questionnaire.", "Responda o questionário.")) {
		return
	}

	profile, err := a.controller.CompleteOnboarding(payload)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// GetProfile 返回档案与派生的年龄
func (a *API) GetProfile(c *gin.Context) {
	profile, err := a.controller.Profile()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	age, err := a.controller.Age()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "age": age})
}

// UpdateProfile 修改资料，目标变化会尝试刷新饮食策略
func (a *API) UpdateProfile(c *gin.Context) {
	var payload service.ProfileUpdate
	if !bindJSON(c, &payload, a.text(c, "Invalid profile data.", "Dados do perfil inválidos.")) {
		return
	}

	profile, err := a.controller.UpdateProfile(c.Request.Context(), payload)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"notice":  a.controller.Notice(),
	})
}

// UpdateTargets 手动设置每日目标
func (a *API) UpdateTargets(c *gin.Context) {
	var payload model.Macros
	if !bindJSON(c, &payload, a.text(c, "Invalid targets.", "Metas inválidas.")) {
		return
	}

	profile, err := a.controller.UpdateTargets(payload)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

type weightRequest struct {
	Weight string `json:"weight"`
}

// RecordWeight 追加体重记录，接受逗号小数
func (a *API) RecordWeight(c *gin.Context) {
	var payload weightRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide a valid weight.", "Informe um peso válido.")) {
		return
	}
	weight, err := service.ParseDecimal(payload.Weight)
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Please provide a valid weight.", "Informe um peso válido."))
		return
	}

	profile, err := a.controller.RecordWeight(weight)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}
