package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/locale"
)

const (
	localeContextKey   = "__nutrascan_locale"
	languageCookieName = "ns_lang"
	languageCookieTTL  = 365 * 24 * 60 * 60
)

// 语言来源，决定是否写回 Cookie 以及 Vary 头
type languageSource int

const (
	sourceDefault languageSource = iota
	sourceHeader
	sourceCookie
	sourceQuery
)

// LocaleMiddleware 解析请求语言，写入 Content-Language 与 Vary。
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		if pref.HTMLLang != "" {
			c.Header("Content-Language", pref.HTMLLang)
		}
		vary := []string{"Accept-Language"}
		if _, source := a.resolveLanguage(c); source >= sourceCookie {
			vary = append(vary, "Cookie")
		}
		addVary(c.Writer.Header(), vary...)
		c.Next()
	}
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if cached, ok := c.Get(localeContextKey); ok {
		if pref, ok := cached.(locale.Preference); ok {
			return pref
		}
	}
	language, source := a.resolveLanguage(c)
	pref := locale.PreferenceForLanguage(language)
	if source == sourceQuery {
		http.SetCookie(c.Writer, languageCookie(pref.Language, isHTTPS(c.Request)))
	}
	c.Set(localeContextKey, pref)
	return pref
}

// resolveLanguage 优先级：?lang > cookie > Accept-Language > 配置默认值
func (a *API) resolveLanguage(c *gin.Context) (string, languageSource) {
	if lang := locale.NormalizeLanguage(c.Query("lang")); lang != "" {
		return lang, sourceQuery
	}
	if value, err := c.Cookie(languageCookieName); err == nil {
		if lang := locale.NormalizeLanguage(value); lang != "" {
			return lang, sourceCookie
		}
	}
	if lang := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
		return lang, sourceHeader
	}
	return a.language, sourceDefault
}

func languageCookie(language string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     languageCookieName,
		Value:    language,
		Path:     "/",
		MaxAge:   languageCookieTTL,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func isHTTPS(r *http.Request) bool {
	if r == nil {
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// addVary 合并 Vary 头，跳过已存在的值
func addVary(header http.Header, values ...string) {
	current := header.Values("Vary")
	merged := make([]string, 0, len(current)+len(values))
	for _, line := range current {
		for _, v := range strings.Split(line, ",") {
			merged = appendUniqueFold(merged, strings.TrimSpace(v))
		}
	}
	for _, v := range values {
		merged = appendUniqueFold(merged, strings.TrimSpace(v))
	}
	if len(merged) > 0 {
		header.Set("Vary", strings.Join(merged, ", "))
	}
}

func appendUniqueFold(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}
