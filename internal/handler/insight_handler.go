package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/service"
)

// renderNarrative 将协作方返回的 Markdown 文本渲染为安全的 HTML，失败时只记录错误
func renderNarrative(c *gin.Context, content string) template.HTML {
	if content == "" {
		return ""
	}
	html, err := service.RenderMarkdown(content)
	if err != nil {
		c.Error(err)
		return ""
	}
	return template.HTML(html)
}

// GetInsights 基于最近的日记生成洞察
func (a *API) GetInsights(c *gin.Context) {
	insights, err := a.controller.Insights(c.Request.Context())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// GetSuggestions 根据剩余营养素给出餐食建议
func (a *API) GetSuggestions(c *gin.Context) {
	suggestions, err := a.controller.Suggestions(c.Request.Context(), c.Query("date"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
		"html":        renderNarrative(c, suggestions),
	})
}

// GetStrategy 返回当前策略与刷新门控状态
func (a *API) GetStrategy(c *gin.Context) {
	status, err := a.controller.StrategyStatus()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	profile, err := a.controller.Profile()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, strategyPayload(c, profile.DietStrategy, status))
}

// RefreshStrategy 冷却期外请求新的饮食策略
func (a *API) RefreshStrategy(c *gin.Context) {
	profile, err := a.controller.RefreshStrategy(c.Request.Context())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	status, err := a.controller.StrategyStatus()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, strategyPayload(c, profile.DietStrategy, status))
}

// ApplyStrategyTargets 用推荐目标覆盖当前目标
func (a *API) ApplyStrategyTargets(c *gin.Context) {
	profile, applied, err := a.controller.ApplyRecommendedTargets()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"applied": applied,
		"notice":  a.controller.Notice(),
	})
}

func strategyPayload(c *gin.Context, strategy *model.DietStrategy, status service.StrategyStatus) gin.H {
	payload := gin.H{
		"status":   status,
		"strategy": strategy,
	}
	if strategy != nil {
		payload["explanationHtml"] = renderNarrative(c, strategy.Explanation)
	}
	return payload
}
