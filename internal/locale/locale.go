package locale

import (
	"strings"
	"time"
)

const (
	LanguagePortuguese = "pt"
	LanguageEnglish    = "en"
)

// Preference 描述一种语言对应的区域设置与日期格式
type Preference struct {
	Language        string
	Locale          string
	HTMLLang        string
	DateLayout      string
	ShortDateLayout string
	TimeLayout      string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "pt") || trimmed == "br" {
		return LanguagePortuguese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

func LanguageFromAcceptLanguage(header string) string {
	trimmed := strings.ToLower(strings.TrimSpace(header))
	if trimmed == "" {
		return ""
	}
	for _, part := range strings.Split(trimmed, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if lang := NormalizeLanguage(tag); lang != "" {
			return lang
		}
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	if normalized == LanguageEnglish {
		return Preference{
			Language:        LanguageEnglish,
			Locale:          "en_US",
			HTMLLang:        "en-US",
			DateLayout:      "01/02/2006",
			ShortDateLayout: "01/02",
			TimeLayout:      "03:04 PM",
		}
	}
	return Preference{
		Language:        LanguagePortuguese,
		Locale:          "pt_BR",
		HTMLLang:        "pt-BR",
		DateLayout:      "02/01/2006",
		ShortDateLayout: "02/01",
		TimeLayout:      "15:04",
	}
}

// DayKey 返回本地日历日的展示字符串，日记按此字段分组
func (p Preference) DayKey(t time.Time) string {
	return t.Format(p.DateLayout)
}

// ShortDate 用于体重记录的日/月展示
func (p Preference) ShortDate(t time.Time) string {
	return t.Format(p.ShortDateLayout)
}

// ClockTime 返回时:分
func (p Preference) ClockTime(t time.Time) string {
	return t.Format(p.TimeLayout)
}

// ParseDayKey 解析 DayKey 生成的字符串
func (p Preference) ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(p.DateLayout, strings.TrimSpace(key), loc)
}

// LastDays 返回包含今天在内、按时间正序排列的最近 n 个日历日
func (p Preference) LastDays(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, p.DayKey(start.AddDate(0, 0, -i)))
	}
	return days
}
