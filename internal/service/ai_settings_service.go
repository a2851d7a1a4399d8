package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutrascan/internal/storage"
)

const (
	// AIProviderGemini 通过 Gemini 的 OpenAI 兼容接口调用。
	AIProviderGemini = "gemini"
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"

	namespaceSettings = "settings"
	settingKeyAI      = "ai"
)

var supportedAIProviders = []string{AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek}

type providerDefaults struct {
	BaseURL string
	Model   string
	Label   string
}

var aiProviderDefaults = map[string]providerDefaults{
	AIProviderGemini:   {BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/", Model: "gemini-2.5-flash", Label: "Gemini"},
	AIProviderOpenAI:   {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", Label: "OpenAI"},
	AIProviderDeepSeek: {BaseURL: "https://api.deepseek.com/v1", Model: "deepseek-chat", Label: "DeepSeek"},
}

// AISettings 是调用协作方所需的全部参数。
type AISettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// AISettingsView 是可以返回给客户端的设置摘要，不包含完整的 Key。
type AISettingsView struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	HasKey    bool   `json:"hasKey"`
	MaskedKey string `json:"maskedKey,omitempty"`
}

// AISettingsInput 用于更新设置，空字段表示沿用默认值。
type AISettingsInput struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// AISettingsService 在本地存储中保存运行时配置的 AI Key，未配置时回退到启动配置。
type AISettingsService struct {
	store    storage.Store
	defaults AISettings
	models   ModelFactory
}

// NewAISettingsService 构造 AISettingsService，defaults 一般来自环境变量。
// models 为 nil 时使用 OpenAI 兼容实现。
func NewAISettingsService(store storage.Store, defaults AISettings, models ModelFactory) *AISettingsService {
	if models == nil {
		models = OpenAICompatibleModels(defaultAITimeout)
	}
	provider := normalizeAIProvider(defaults.Provider)
	if provider == "" {
		provider = AIProviderGemini
	}
	defaults.Provider = provider
	defaults.APIKey = strings.TrimSpace(defaults.APIKey)
	defaults.Model = strings.TrimSpace(defaults.Model)
	defaults.BaseURL = strings.TrimSpace(defaults.BaseURL)
	return &AISettingsService{store: store, defaults: defaults, models: models}
}

// GetSettings 返回解析后的设置：已保存的值优先，其次是启动配置，最后是服务商默认值。
func (s *AISettingsService) GetSettings() (AISettings, error) {
	result := s.defaults

	var stored AISettings
	if err := storage.GetJSON(s.store, namespaceSettings, settingKeyAI, &stored); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return result, fmt.Errorf("load ai settings: %w", err)
		}
	} else {
		if provider := normalizeAIProvider(stored.Provider); provider != "" {
			if provider != result.Provider {
				result.Model = ""
				result.BaseURL = ""
			}
			result.Provider = provider
		}
		if key := strings.TrimSpace(stored.APIKey); key != "" {
			result.APIKey = key
		}
		if model := strings.TrimSpace(stored.Model); model != "" {
			result.Model = model
		}
		if base := strings.TrimSpace(stored.BaseURL); base != "" {
			result.BaseURL = base
		}
	}

	return withProviderDefaults(result), nil
}

// View 返回适合展示的设置摘要。
func (s *AISettingsService) View() (AISettingsView, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return AISettingsView{}, err
	}
	return AISettingsView{
		Provider:  settings.Provider,
		Model:     settings.Model,
		HasKey:    settings.APIKey != "",
		MaskedKey: maskKey(settings.APIKey),
	}, nil
}

// UpdateSettings 保存设置。
func (s *AISettingsService) UpdateSettings(input AISettingsInput) (AISettingsView, error) {
	provider := AIProviderGemini
	if strings.TrimSpace(input.Provider) != "" {
		provider = normalizeAIProvider(input.Provider)
		if provider == "" {
			return AISettingsView{}, newValidationError("provider", "Provedor de IA não suportado.")
		}
	}

	sanitized := AISettings{
		Provider: provider,
		APIKey:   strings.TrimSpace(input.APIKey),
		Model:    strings.TrimSpace(input.Model),
		BaseURL:  strings.TrimSpace(input.BaseURL),
	}
	if err := storage.SetJSON(s.store, namespaceSettings, settingKeyAI, sanitized); err != nil {
		return AISettingsView{}, fmt.Errorf("update ai settings: %w", err)
	}
	return s.View()
}

// ClearSettings 删除已保存的设置，回退到启动配置。
func (s *AISettingsService) ClearSettings() error {
	if err := s.store.Delete(namespaceSettings, settingKeyAI); err != nil {
		return fmt.Errorf("clear ai settings: %w", err)
	}
	return nil
}

// TestConnection 用给定的 Key 发起一次最小请求，验证服务商可用。
// provider 为空时沿用当前设置。
func (s *AISettingsService) TestConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	current, err := s.GetSettings()
	if err != nil {
		return err
	}

	settings := current
	if strings.TrimSpace(provider) != "" {
		prov := normalizeAIProvider(provider)
		if prov == "" {
			return newValidationError("provider", "Provedor de IA não suportado.")
		}
		if prov != current.Provider {
			settings = AISettings{Provider: prov}
		}
	}
	settings.APIKey = key
	settings = withProviderDefaults(settings)

	_, err = generateWith(ctx, s.models, settings, "PING", aiRequest{
		UserPrompt: "ping",
		MaxTokens:  1,
	})
	return err
}

func withProviderDefaults(settings AISettings) AISettings {
	defaults, ok := aiProviderDefaults[settings.Provider]
	if !ok {
		settings.Provider = AIProviderGemini
		defaults = aiProviderDefaults[AIProviderGemini]
	}
	if settings.Model == "" {
		settings.Model = defaults.Model
	}
	if settings.BaseURL == "" {
		settings.BaseURL = defaults.BaseURL
	}
	return settings
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}

func maskKey(key string) string {
	runes := []rune(strings.TrimSpace(key))
	if len(runes) == 0 {
		return ""
	}
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-8) + string(runes[len(runes)-4:])
}
