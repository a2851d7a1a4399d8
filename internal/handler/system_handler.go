package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/service"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"language": a.language,
	})
}

type aiSettingsRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	BaseURL  string `json:"baseUrl"`
}

type aiTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// GetAISettings 返回当前 AI 设置摘要，不包含完整的 Key。
func (a *API) GetAISettings(c *gin.Context) {
	view, err := a.settings.View()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": view})
}

// UpdateAISettings 保存 AI 服务商与 Key，登录前即可调用。
func (a *API) UpdateAISettings(c *gin.Context) {
	var payload aiSettingsRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide valid AI settings.", "Informe configurações de IA válidas.")) {
		return
	}

	view, err := a.settings.UpdateSettings(service.AISettingsInput{
		Provider: payload.Provider,
		APIKey:   payload.APIKey,
		Model:    payload.Model,
		BaseURL:  payload.BaseURL,
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  a.text(c, "AI settings saved.", "Configurações de IA salvas."),
		"settings": view,
	})
}

// ClearAISettings 删除已保存的 Key，回退到启动配置。
func (a *API) ClearAISettings(c *gin.Context) {
	if err := a.settings.ClearSettings(); err != nil {
		a.handleServiceError(c, err)
		return
	}
	view, err := a.settings.View()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  a.text(c, "AI settings cleared.", "Configurações de IA removidas."),
		"settings": view,
	})
}

// TestAIConnection 测试不同 AI 平台 API Key 的连通性。
func (a *API) TestAIConnection(c *gin.Context) {
	var payload aiTestRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide valid AI settings.", "Informe configurações de IA válidas.")) {
		return
	}

	if err := a.settings.TestConnection(c.Request.Context(), payload.Provider, payload.APIKey); err != nil {
		var validation *service.ValidationError
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing), errors.As(err, &validation):
			a.handleServiceError(c, err)
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": a.text(c, "AI connection is working.", "Conexão com a IA funcionando.")})
}
