package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nutrascan/internal/model"
	"github.com/tmc/langchaingo/llms"
)

func newTestNutritionService(t *testing.T, responses ...string) (*AINutritionService, *fakeModel, *AISettingsService) {
	t.Helper()
	model := &fakeModel{responses: responses}
	settings := NewAISettingsService(setupServiceTestStore(t), AISettings{Provider: AIProviderGemini, APIKey: "test-key"}, fakeFactory(model, nil))
	return NewAINutritionService(settings), model, settings
}

func TestAnalyzeFoodImageParsesFencedJSON(t *testing.T) {
	response := "```json\n" + `{"items":[{"name":" Arroz ","weight":150,"calories":195,"protein":4,"carbs":42,"fat":0},{"name":"Frango","weight":120,"calories":198,"protein":37,"carbs":0,"fat":4}],"totals":{"calories":1,"protein":1,"carbs":1,"fat":1}}` + "\n```"
	svc, fake, _ := newTestNutritionService(t, response)

	analysis, err := svc.AnalyzeFoodImage(context.Background(), "data:image/jpeg;base64,AAAA", "almoço")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(analysis.Items) != 2 || analysis.Items[0].Name != "Arroz" {
		t.Fatalf("unexpected items: %+v", analysis.Items)
	}
	want := model.Macros{Calories: 393, Protein: 41, Carbs: 42, Fat: 4}
	if analysis.Totals != want {
		t.Fatalf("totals must equal the item sum, got %+v", analysis.Totals)
	}

	if fake.calls != 1 {
		t.Fatalf("expected one model call, got %d", fake.calls)
	}
	if !fake.options[0].JSONMode {
		t.Fatal("expected JSON mode for structured requests")
	}
	messages := fake.messages[0]
	human := messages[len(messages)-1]
	if human.Role != llms.ChatMessageTypeHuman || len(human.Parts) != 2 {
		t.Fatalf("expected text and image parts, got %+v", human)
	}
	image, ok := human.Parts[1].(llms.ImageURLContent)
	if !ok || image.URL != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("expected image part, got %#v", human.Parts[1])
	}
	text, ok := human.Parts[0].(llms.TextContent)
	if !ok || !strings.Contains(text.Text, "almoço") {
		t.Fatalf("expected description in prompt, got %#v", human.Parts[0])
	}
}

func TestAnalyzeFoodImageRejectsBadOutput(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"items":[]}`,
		`{"items":[{"name":"Pão","weight":50,"calories":-10,"protein":1,"carbs":1,"fat":1}]}`,
	}
	for _, response := range cases {
		svc, _, _ := newTestNutritionService(t, response)
		_, err := svc.AnalyzeFoodImage(context.Background(), "data:image/jpeg;base64,AAAA", "")
		var collaborator *CollaboratorError
		if !errors.As(err, &collaborator) {
			t.Fatalf("response %q: expected CollaboratorError, got %v", response, err)
		}
	}
}

func TestCollaboratorErrorWhenKeyMissing(t *testing.T) {
	fake := &fakeModel{responses: []string{"ok"}}
	settings := NewAISettingsService(setupServiceTestStore(t), AISettings{Provider: AIProviderOpenAI}, fakeFactory(fake, nil))
	svc := NewAINutritionService(settings)

	_, err := svc.MealSuggestions(context.Background(), model.Macros{Calories: 500}, model.GoalCut)
	var collaborator *CollaboratorError
	if !errors.As(err, &collaborator) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
	if !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing in chain, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatal("model must not be called without a key")
	}
}

func TestCollaboratorErrorWhenModelFails(t *testing.T) {
	svc, fake, _ := newTestNutritionService(t)
	fake.err = errCollaboratorDown

	_, err := svc.AnalyzeMealImpact(context.Background(), model.Macros{Calories: 600}, model.GoalBulk)
	if !errors.Is(err, errCollaboratorDown) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
	var collaborator *CollaboratorError
	if !errors.As(err, &collaborator) || collaborator.Kind != "impact" {
		t.Fatalf("expected impact CollaboratorError, got %v", err)
	}
}

func TestNarrativeFallbacks(t *testing.T) {
	svc, _, _ := newTestNutritionService(t, "")

	impact, err := svc.AnalyzeMealImpact(context.Background(), model.Macros{}, model.GoalMaintain)
	if err != nil || impact != FallbackMessage {
		t.Fatalf("expected fallback impact, got %q, %v", impact, err)
	}
	suggestions, err := svc.MealSuggestions(context.Background(), model.Macros{}, model.GoalMaintain)
	if err != nil || suggestions != "Sugestão indisponível." {
		t.Fatalf("expected fallback suggestion, got %q, %v", suggestions, err)
	}
}

func TestMealSuggestionsPromptCarriesRemaining(t *testing.T) {
	svc, fake, _ := newTestNutritionService(t, "Omelete com aveia.")

	text, err := svc.MealSuggestions(context.Background(), model.Macros{Calories: 640, Protein: 45, Carbs: 60, Fat: 20}, model.GoalBulk)
	if err != nil {
		t.Fatalf("suggestions failed: %v", err)
	}
	if text != "Omelete com aveia." {
		t.Fatalf("unexpected text %q", text)
	}
	prompt := fake.messages[0][len(fake.messages[0])-1].Parts[0].(llms.TextContent).Text
	for _, want := range []string{"640kcal", "45g prot", "60g carb", "20g gord", "hipertrofia"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %s", want, prompt)
		}
	}
	if fake.options[0].JSONMode {
		t.Fatal("narrative requests must not use JSON mode")
	}
}

func TestGenerateInsightsLimitsInputAndOutput(t *testing.T) {
	response := `{"insights":[
		{"title":"Proteína","description":"Boa ingestão","type":"success"},
		{"title":"Sódio","description":"Atenção","type":"warning"},
		{"title":"Água","description":"Beba mais","type":"other"},
		{"title":"Extra","description":"Ignorado","type":"info"}]}`
	svc, fake, _ := newTestNutritionService(t, response)

	entries := make([]model.DiaryEntry, 15)
	for i := range entries {
		entries[i] = model.DiaryEntry{ID: int64(100 + i)}
	}
	insights, err := svc.GenerateInsights(context.Background(), entries)
	if err != nil {
		t.Fatalf("insights failed: %v", err)
	}
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[2].Type != model.InsightInfo {
		t.Fatalf("unknown type must fall back to info, got %q", insights[2].Type)
	}

	prompt := fake.messages[0][len(fake.messages[0])-1].Parts[0].(llms.TextContent).Text
	if !strings.Contains(prompt, `"id":109`) || strings.Contains(prompt, `"id":110`) {
		t.Fatal("expected only the 10 most recent entries in the prompt")
	}
}

func TestDietStrategyParsing(t *testing.T) {
	response := `{"strategy":"Cutting","explanation":"Déficit moderado.","recommendedFoods":["Ovos","Frango","Aveia","Brócolis","Iogurte","Batata"],"recommendedTargets":{"calories":2100,"protein":180,"carbs":190,"fat":65}}`
	svc, fake, _ := newTestNutritionService(t, response)

	profile := model.Profile{Name: "Ana", Avatar: "data:image/jpeg;base64,AAAA", Goal: model.GoalCut}
	strategy, err := svc.DietStrategy(context.Background(), profile, nil)
	if err != nil {
		t.Fatalf("strategy failed: %v", err)
	}
	if strategy.Strategy != "Cutting" || len(strategy.RecommendedFoods) != 5 {
		t.Fatalf("unexpected strategy: %+v", strategy)
	}
	if strategy.RecommendedTargets == nil || strategy.RecommendedTargets.Calories != 2100 {
		t.Fatalf("unexpected targets: %+v", strategy.RecommendedTargets)
	}

	prompt := fake.messages[0][len(fake.messages[0])-1].Parts[0].(llms.TextContent).Text
	if strings.Contains(prompt, "base64") {
		t.Fatal("avatar must not be sent to the collaborator")
	}
}

func TestDietStrategyDropsInvalidTargets(t *testing.T) {
	strategy, err := parseDietStrategy(`{"strategy":"Manutenção","explanation":"ok","recommendedFoods":[],"recommendedTargets":{"calories":0,"protein":1,"carbs":1,"fat":1}}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if strategy.RecommendedTargets != nil {
		t.Fatal("non-positive calories must drop the recommendation")
	}
	if _, err := parseDietStrategy(`{"explanation":"sem nome"}`); err == nil {
		t.Fatal("expected error when strategy name is missing")
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for input, want := range cases {
		if got := stripCodeFence(input); got != want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", input, got, want)
		}
	}
}
