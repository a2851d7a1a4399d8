package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/handler"
)

const sessionCookieName = "nutrascan_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))
	r.Use(api.LocaleMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/onboarding/questions", api.GetOnboardingQuestions)

		// AI Key 在登录前即可配置
		apiGroup.GET("/settings/ai", api.GetAISettings)
		apiGroup.PUT("/settings/ai", api.UpdateAISettings)
		apiGroup.DELETE("/settings/ai", api.ClearAISettings)
		apiGroup.POST("/settings/ai/test", api.TestAIConnection)

		apiGroup.POST("/auth/register", api.Register)
		apiGroup.POST("/auth/login", api.Login)
		apiGroup.POST("/auth/token", api.IssueToken)

		// 需要认证的路由
		auth := apiGroup.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/auth/me", api.Me)
			auth.POST("/auth/logout", api.Logout)
			auth.GET("/state", api.GetState)
			auth.GET("/notice", api.GetNotice)

			auth.POST("/onboarding", api.CompleteOnboarding)

			auth.GET("/profile", api.GetProfile)
			auth.PATCH("/profile", api.UpdateProfile)
			auth.PUT("/profile/targets", api.UpdateTargets)
			auth.POST("/profile/avatar", api.UploadAvatar)
			auth.POST("/profile/weight", api.RecordWeight)

			auth.GET("/diary", api.ListEntries)
			auth.GET("/diary/summary", api.GetDailySummary)
			auth.GET("/diary/week", api.GetWeekOverview)
			auth.PUT("/diary/:id", api.UpdateEntry)
			auth.DELETE("/diary/:id", api.DeleteEntry)

			auth.POST("/analysis", api.AnalyzeMeal)
			auth.GET("/analysis", api.GetDraft)
			auth.PUT("/analysis/items/:index", api.EditDraftItem)
			auth.POST("/analysis/commit", api.CommitDraft)
			auth.POST("/analysis/impact", api.MealImpact)
			auth.DELETE("/analysis", api.DiscardDraft)

			auth.GET("/insights", api.GetInsights)
			auth.GET("/suggestions", api.GetSuggestions)

			auth.GET("/strategy", api.GetStrategy)
			auth.POST("/strategy/refresh", api.RefreshStrategy)
			auth.POST("/strategy/apply", api.ApplyStrategyTargets)
		}
	}

	return r
}
