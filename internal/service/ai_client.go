package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultAITimeout = 60 * time.Second

// ModelFactory 根据解析后的设置构造模型，测试中可替换为假实现。
type ModelFactory func(settings AISettings) (llms.Model, error)

// OpenAICompatibleModels 返回基于 OpenAI 兼容接口的 ModelFactory，三个服务商共用。
func OpenAICompatibleModels(timeout time.Duration) ModelFactory {
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	return func(settings AISettings) (llms.Model, error) {
		llm, err := openai.New(
			openai.WithBaseURL(strings.TrimRight(settings.BaseURL, "/")),
			openai.WithToken(settings.APIKey),
			openai.WithModel(settings.Model),
			openai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		return llm, nil
	}
}

type aiRequest struct {
	SystemPrompt string
	UserPrompt   string
	ImageURL     string
	JSON         bool
	MaxTokens    int
	Temperature  float64
}

type aiClient struct {
	settings *AISettingsService
}

func newAIClient(settings *AISettingsService) *aiClient {
	return &aiClient{settings: settings}
}

func (c *aiClient) generate(ctx context.Context, kind string, req aiRequest) (string, error) {
	settings, err := c.settings.GetSettings()
	if err != nil {
		return "", fmt.Errorf("读取 AI 设置失败: %w", err)
	}
	return generateWith(ctx, c.settings.models, settings, kind, req)
}

func generateWith(ctx context.Context, factory ModelFactory, settings AISettings, kind string, req aiRequest) (string, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return "", ErrAIAPIKeyMissing
	}
	label := settings.Provider
	if defaults, ok := aiProviderDefaults[settings.Provider]; ok {
		label = defaults.Label
	}

	model, err := factory(settings)
	if err != nil {
		return "", fmt.Errorf("创建 %s 客户端失败: %w", label, err)
	}

	var messages []llms.MessageContent
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	parts := []llms.ContentPart{llms.TextPart(req.UserPrompt)}
	if req.ImageURL != "" {
		parts = append(parts, llms.ImageURLPart(req.ImageURL))
		logAIImage(kind, req.ImageURL)
	}
	messages = append(messages, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})

	var options []llms.CallOption
	if req.JSON {
		options = append(options, llms.WithJSONMode())
	}
	if req.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		options = append(options, llms.WithTemperature(req.Temperature))
	}

	logAIExchange(kind, "prompt", req.UserPrompt)
	resp, err := model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", fmt.Errorf("请求 %s 接口失败: %w", label, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%s 接口未返回结果", label)
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	logAIExchange(kind, "response", content)
	return content, nil
}

var errEmptyAIOutput = errors.New("empty model output")

// stripCodeFence 去掉模型偶尔包裹在 JSON 外面的 ``` 代码块标记
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
