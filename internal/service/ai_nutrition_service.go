package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

// NutritionAI 定义与生成式 AI 协作方的五种交互。
type NutritionAI interface {
	AnalyzeFoodImage(ctx context.Context, imageDataURL, description string) (model.FoodAnalysis, error)
	AnalyzeMealImpact(ctx context.Context, totals model.Macros, goal model.Goal) (string, error)
	GenerateInsights(ctx context.Context, entries []model.DiaryEntry) ([]model.Insight, error)
	DietStrategy(ctx context.Context, profile model.Profile, recent []model.DiaryEntry) (model.DietStrategy, error)
	MealSuggestions(ctx context.Context, remaining model.Macros, goal model.Goal) (string, error)
}

const (
	maxInsights         = 3
	insightEntryLimit   = 10
	maxRecommendedFoods = 5

	nutritionSystemPrompt = "Você é um nutricionista esportivo. Responda sempre em português do Brasil."
	jsonOnlyInstruction   = "Responda apenas com um objeto JSON válido, sem texto adicional."

	fallbackSuggestion = "Sugestão indisponível."
)

// AINutritionService 通过当前配置的服务商实现 NutritionAI。
type AINutritionService struct {
	client *aiClient
}

// NewAINutritionService 构造 AINutritionService。
func NewAINutritionService(settings *AISettingsService) *AINutritionService {
	return &AINutritionService{client: newAIClient(settings)}
}

func (s *AINutritionService) AnalyzeFoodImage(ctx context.Context, imageDataURL, description string) (model.FoodAnalysis, error) {
	if strings.TrimSpace(imageDataURL) == "" {
		return model.FoodAnalysis{}, newValidationError("image", "Envie uma imagem da refeição.")
	}
	hint := strings.TrimSpace(description)
	if hint == "" {
		hint = "Nenhuma descrição fornecida"
	}

	prompt := fmt.Sprintf(`Analise esta refeição e retorne os dados nutricionais estimados.
Se houver uma descrição, use-a para refinar a análise: "%s".
Formato: {"items":[{"name":string,"weight":number (gramas),"calories":number,"protein":number,"carbs":number,"fat":number}],"totals":{"calories":number,"protein":number,"carbs":number,"fat":number}}
%s`, hint, jsonOnlyInstruction)

	content, err := s.client.generate(ctx, "FOOD", aiRequest{
		SystemPrompt: nutritionSystemPrompt,
		UserPrompt:   prompt,
		ImageURL:     imageDataURL,
		JSON:         true,
		Temperature:  0.2,
	})
	if err != nil {
		return model.FoodAnalysis{}, collaboratorError("food", err)
	}

	analysis, err := parseFoodAnalysis(content)
	if err != nil {
		return model.FoodAnalysis{}, collaboratorError("food", err)
	}
	return analysis, nil
}

func parseFoodAnalysis(content string) (model.FoodAnalysis, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return model.FoodAnalysis{}, errEmptyAIOutput
	}
	var raw model.FoodAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return model.FoodAnalysis{}, fmt.Errorf("解析分析结果失败: %w", err)
	}

	items := make([]model.FoodItem, 0, len(raw.Items))
	for _, item := range raw.Items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		for _, v := range []float64{item.Weight, item.Calories, item.Protein, item.Carbs, item.Fat} {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return model.FoodAnalysis{}, fmt.Errorf("invalid nutrient value for %q", item.Name)
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return model.FoodAnalysis{}, fmt.Errorf("no food items recognized")
	}

	// 以条目求和为准，避免模型给出的 totals 与条目不一致
	return model.FoodAnalysis{Items: items, Totals: nutrition.SumItems(items)}, nil
}

func (s *AINutritionService) AnalyzeMealImpact(ctx context.Context, totals model.Macros, goal model.Goal) (string, error) {
	prompt := fmt.Sprintf(`Analise o impacto desta refeição (%gkcal, %gg prot, %gg carb, %gg gord) no objetivo de "%s".
Seja breve, direto e motivador. Máximo 3 linhas. Não use asteriscos.`,
		totals.Calories, totals.Protein, totals.Carbs, totals.Fat, goal)

	content, err := s.client.generate(ctx, "IMPACT", aiRequest{
		SystemPrompt: nutritionSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    200,
		Temperature:  0.6,
	})
	if err != nil {
		return "", collaboratorError("impact", err)
	}
	if content == "" {
		return FallbackMessage, nil
	}
	return content, nil
}

type insightsPayload struct {
	Insights []model.Insight `json:"insights"`
}

func (s *AINutritionService) GenerateInsights(ctx context.Context, entries []model.DiaryEntry) ([]model.Insight, error) {
	recent := entries
	if len(recent) > insightEntryLimit {
		recent = recent[:insightEntryLimit]
	}
	encoded, err := json.Marshal(recent)
	if err != nil {
		return nil, fmt.Errorf("encode diary: %w", err)
	}

	prompt := fmt.Sprintf(`Com base nas últimas refeições do usuário: %s,
identifique %d padrões ou insights nutricionais importantes.
Formato: {"insights":[{"title":string,"description":string,"type":"success"|"warning"|"info"}]}
%s`, encoded, maxInsights, jsonOnlyInstruction)

	content, err := s.client.generate(ctx, "INSIGHTS", aiRequest{
		SystemPrompt: nutritionSystemPrompt,
		UserPrompt:   prompt,
		JSON:         true,
		Temperature:  0.4,
	})
	if err != nil {
		return nil, collaboratorError("insights", err)
	}

	insights, err := parseInsights(content)
	if err != nil {
		return nil, collaboratorError("insights", err)
	}
	return insights, nil
}

func parseInsights(content string) ([]model.Insight, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return nil, errEmptyAIOutput
	}
	var parsed insightsPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("解析洞察失败: %w", err)
	}

	insights := make([]model.Insight, 0, maxInsights)
	for _, insight := range parsed.Insights {
		insight.Title = strings.TrimSpace(insight.Title)
		insight.Description = strings.TrimSpace(insight.Description)
		if insight.Title == "" && insight.Description == "" {
			continue
		}
		switch insight.Type {
		case model.InsightSuccess, model.InsightWarning, model.InsightInfo:
		default:
			insight.Type = model.InsightInfo
		}
		insights = append(insights, insight)
		if len(insights) == maxInsights {
			break
		}
	}
	return insights, nil
}

func (s *AINutritionService) DietStrategy(ctx context.Context, profile model.Profile, recent []model.DiaryEntry) (model.DietStrategy, error) {
	// 头像不参与策略计算
	profile.Avatar = ""
	encodedProfile, err := json.Marshal(profile)
	if err != nil {
		return model.DietStrategy{}, fmt.Errorf("encode profile: %w", err)
	}
	encodedDiary, err := json.Marshal(recent)
	if err != nil {
		return model.DietStrategy{}, fmt.Errorf("encode diary: %w", err)
	}

	prompt := fmt.Sprintf(`Com base no perfil do usuário: %s
e nos registros alimentares dos últimos 30 dias: %s,
defina a melhor estratégia dietética atual (Bulking, Bulking Leve, Cutting ou Manutenção).
Explique o porquê de forma técnica e direta.
Sugira 5 alimentos específicos e direcionados para esta fase, explicando brevemente o benefício de cada um.
Além disso, recomende as metas diárias ideais (calorias, proteínas, carboidratos e gorduras) para este usuário.
Formato: {"strategy":string,"explanation":string,"recommendedFoods":[string],"recommendedTargets":{"calories":number,"protein":number,"carbs":number,"fat":number}}
%s`, encodedProfile, encodedDiary, jsonOnlyInstruction)

	content, err := s.client.generate(ctx, "STRATEGY", aiRequest{
		SystemPrompt: nutritionSystemPrompt,
		UserPrompt:   prompt,
		JSON:         true,
		Temperature:  0.3,
	})
	if err != nil {
		return model.DietStrategy{}, collaboratorError("strategy", err)
	}

	strategy, err := parseDietStrategy(content)
	if err != nil {
		return model.DietStrategy{}, collaboratorError("strategy", err)
	}
	return strategy, nil
}

func parseDietStrategy(content string) (model.DietStrategy, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return model.DietStrategy{}, errEmptyAIOutput
	}
	var strategy model.DietStrategy
	if err := json.Unmarshal([]byte(payload), &strategy); err != nil {
		return model.DietStrategy{}, fmt.Errorf("解析策略失败: %w", err)
	}
	strategy.Strategy = strings.TrimSpace(strategy.Strategy)
	strategy.Explanation = strings.TrimSpace(strategy.Explanation)
	if strategy.Strategy == "" {
		return model.DietStrategy{}, fmt.Errorf("strategy name missing")
	}

	foods := make([]string, 0, maxRecommendedFoods)
	for _, food := range strategy.RecommendedFoods {
		if trimmed := strings.TrimSpace(food); trimmed != "" {
			foods = append(foods, trimmed)
		}
		if len(foods) == maxRecommendedFoods {
			break
		}
	}
	strategy.RecommendedFoods = foods

	if targets := strategy.RecommendedTargets; targets != nil {
		if targets.Calories <= 0 || targets.Protein < 0 || targets.Carbs < 0 || targets.Fat < 0 {
			strategy.RecommendedTargets = nil
		}
	}
	return strategy, nil
}

func (s *AINutritionService) MealSuggestions(ctx context.Context, remaining model.Macros, goal model.Goal) (string, error) {
	prompt := fmt.Sprintf(`O usuário ainda precisa consumir: %gkcal, %gg prot, %gg carb, %gg gord.
Seu objetivo é "%s".
Sugira 2 opções de refeições rápidas e saudáveis para bater essas metas. Seja breve. Não use asteriscos.`,
		remaining.Calories, remaining.Protein, remaining.Carbs, remaining.Fat, goal)

	content, err := s.client.generate(ctx, "SUGGESTIONS", aiRequest{
		SystemPrompt: nutritionSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    400,
		Temperature:  0.7,
	})
	if err != nil {
		return "", collaboratorError("suggestions", err)
	}
	if content == "" {
		return fallbackSuggestion, nil
	}
	return content, nil
}
