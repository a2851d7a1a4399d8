package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/nutrascan/internal/db"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/storage"
	"github.com/tmc/langchaingo/llms"
)

func setupServiceTestStore(t *testing.T) storage.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := storage.NewGormStore(gdb)
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeModel 记录收到的消息与调用选项，按顺序返回预设的响应
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	messages  [][]llms.MessageContent
	options   []llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	m.calls++
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)

	if m.err != nil {
		return nil, m.err
	}
	content := ""
	if len(m.responses) > 0 {
		content = m.responses[0]
		if len(m.responses) > 1 {
			m.responses = m.responses[1:]
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func fakeFactory(model *fakeModel, seen *[]AISettings) ModelFactory {
	return func(settings AISettings) (llms.Model, error) {
		if seen != nil {
			*seen = append(*seen, settings)
		}
		return model, nil
	}
}

// fakeNutritionAI 是 Controller 测试使用的协作方替身
type fakeNutritionAI struct {
	mu sync.Mutex

	analysis    model.FoodAnalysis
	impact      string
	insights    []model.Insight
	strategy    model.DietStrategy
	suggestions string
	err         error

	// block 非 nil 时调用会等待该通道关闭
	block   chan struct{}
	started chan string

	calls       map[string]int
	lastEntries []model.DiaryEntry
	lastRemain  model.Macros
	lastGoal    model.Goal
	lastImage   string
}

func newFakeNutritionAI() *fakeNutritionAI {
	return &fakeNutritionAI{calls: make(map[string]int)}
}

func (f *fakeNutritionAI) enter(ctx context.Context, kind string) error {
	f.mu.Lock()
	f.calls[kind]++
	block := f.block
	started := f.started
	err := f.err
	f.mu.Unlock()

	if started != nil {
		started <- kind
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeNutritionAI) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeNutritionAI) AnalyzeFoodImage(ctx context.Context, imageDataURL, description string) (model.FoodAnalysis, error) {
	if err := f.enter(ctx, "food"); err != nil {
		return model.FoodAnalysis{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastImage = imageDataURL
	items := append([]model.FoodItem(nil), f.analysis.Items...)
	return model.FoodAnalysis{Items: items, Totals: f.analysis.Totals}, nil
}

func (f *fakeNutritionAI) AnalyzeMealImpact(ctx context.Context, totals model.Macros, goal model.Goal) (string, error) {
	if err := f.enter(ctx, "impact"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastGoal = goal
	return f.impact, nil
}

func (f *fakeNutritionAI) GenerateInsights(ctx context.Context, entries []model.DiaryEntry) ([]model.Insight, error) {
	if err := f.enter(ctx, "insights"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEntries = entries
	return f.insights, nil
}

func (f *fakeNutritionAI) DietStrategy(ctx context.Context, profile model.Profile, recent []model.DiaryEntry) (model.DietStrategy, error) {
	if err := f.enter(ctx, "strategy"); err != nil {
		return model.DietStrategy{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastEntries = recent
	return f.strategy, nil
}

func (f *fakeNutritionAI) MealSuggestions(ctx context.Context, remaining model.Macros, goal model.Goal) (string, error) {
	if err := f.enter(ctx, "suggestions"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRemain = remaining
	f.lastGoal = goal
	return f.suggestions, nil
}

var errCollaboratorDown = errors.New("collaborator unreachable")
