package view

import (
	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

// QuestionOption is one selectable answer. Value is what the API accepts.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question describes one onboarding step.
type Question struct {
	Step    int              `json:"step"`
	Field   string           `json:"field"`
	Title   string           `json:"title"`
	Kind    string           `json:"kind"`
	Scored  bool             `json:"scored"`
	Options []QuestionOption `json:"options,omitempty"`
}

const (
	QuestionKindIntro   = "intro"
	QuestionKindForm    = "form"
	QuestionKindOptions = "options"
	QuestionKindFinish  = "finish"
)

type bodyQuestion struct {
	field      string
	portuguese string
	english    string
	scored     bool
}

// 腰部与面部问题只采集，不参与体脂估算
var bodyQuestions = []bodyQuestion{
	{field: "abdomen", portuguese: "Como está seu abdômen?", english: "How is your abdomen?", scored: true},
	{field: "loveHandles", portuguese: "Cintura / Pneuzinhos", english: "Waist / love handles", scored: false},
	{field: "upperBody", portuguese: "Braços e peitoral", english: "Arms and chest", scored: true},
	{field: "lowerBody", portuguese: "Pernas", english: "Legs", scored: true},
	{field: "faceNeck", portuguese: "Rosto e pescoço", english: "Face and neck", scored: false},
}

// OnboardingQuestions returns the ordered onboarding steps for the language.
func OnboardingQuestions(language string) []Question {
	questions := []Question{
		{Field: "intro", Kind: QuestionKindIntro, Title: locale.Pick(language, "Hi, let's start your journey", "Olá, vamos começar sua jornada")},
		{Field: "about", Kind: QuestionKindForm, Title: locale.Pick(language, "About you", "Sobre você")},
		{Field: "goal", Kind: QuestionKindOptions, Title: locale.Pick(language, "What is your goal?", "Qual seu objetivo?"), Options: GoalOptions(language)},
		{Field: "activity", Kind: QuestionKindOptions, Title: locale.Pick(language, "Activity level", "Nível de atividade"), Options: ActivityOptions(language)},
	}

	descriptors := DescriptorOptions()
	for _, q := range bodyQuestions {
		questions = append(questions, Question{
			Field:   q.field,
			Kind:    QuestionKindOptions,
			Title:   locale.Pick(language, q.english, q.portuguese),
			Scored:  q.scored,
			Options: descriptors,
		})
	}

	questions = append(questions, Question{Field: "finish", Kind: QuestionKindFinish, Title: locale.Pick(language, "All set!", "Tudo pronto!")})
	for i := range questions {
		questions[i].Step = i
	}
	return questions
}

// GoalOptions lists the goal answers.
func GoalOptions(language string) []QuestionOption {
	return []QuestionOption{
		{Value: string(model.GoalCut), Label: locale.Pick(language, "Lose weight", "Emagrecer")},
		{Value: string(model.GoalMaintain), Label: locale.Pick(language, "Maintain", "Manter")},
		{Value: string(model.GoalBulk), Label: locale.Pick(language, "Build muscle", "Hipertrofia")},
	}
}

// ActivityOptions lists the activity answers.
func ActivityOptions(language string) []QuestionOption {
	return []QuestionOption{
		{Value: string(model.ActivitySedentary), Label: locale.Pick(language, "Sedentary", "Sedentário")},
		{Value: string(model.ActivityLight), Label: locale.Pick(language, "Light", "Leve")},
		{Value: string(model.ActivityModerate), Label: locale.Pick(language, "Moderate", "Moderado")},
		{Value: string(model.ActivityIntense), Label: locale.Pick(language, "Intense", "Intenso")},
	}
}

// DescriptorOptions lists the body descriptor answers. The stored labels double as values.
func DescriptorOptions() []QuestionOption {
	descriptors := nutrition.Descriptors()
	options := make([]QuestionOption, 0, len(descriptors))
	for _, d := range descriptors {
		options = append(options, QuestionOption{Value: d.String(), Label: d.String()})
	}
	return options
}
