package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	controller *service.Controller
	settings   *service.AISettingsService
	tokens     *TokenIssuer
	language   string
}

// NewAPI constructs a handler set around the application controller.
// language 为请求未指定语言时的默认值。
func NewAPI(controller *service.Controller, settings *service.AISettingsService, tokens *TokenIssuer, language string) *API {
	normalized := locale.NormalizeLanguage(language)
	if normalized == "" {
		normalized = locale.LanguagePortuguese
	}
	return &API{
		controller: controller,
		settings:   settings,
		tokens:     tokens,
		language:   normalized,
	}
}

const sessionContextKey = "__nutrascan_session"

// currentSession 返回 AuthRequired 中间件写入的会话
func currentSession(c *gin.Context) (model.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return model.Session{}, false
	}
	session, ok := value.(model.Session)
	return session, ok
}

// text 按请求语言选择提示文案
func (a *API) text(c *gin.Context, english, portuguese string) string {
	return locale.Pick(a.requestLocale(c).Language, english, portuguese)
}
