package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/nutrition"
)

const birthDateLayout = "2006-01-02"

// OnboardingInput 为引导流程的全部回答。描述类字段使用问题表中的标签。
type OnboardingInput struct {
	Name        string         `json:"name"`
	BirthDate   string         `json:"birthDate"`
	Height      string         `json:"height"`
	Weight      string         `json:"weight"`
	Gender      model.Gender   `json:"gender"`
	Goal        model.Goal     `json:"goal"`
	Activity    model.Activity `json:"activity"`
	Abdomen     string         `json:"abdomen"`
	LoveHandles string         `json:"loveHandles"`
	UpperBody   string         `json:"upperBody"`
	LowerBody   string         `json:"lowerBody"`
	FaceNeck    string         `json:"faceNeck"`
}

// BuildProfile 校验回答并运行估算引擎，生成新的档案（含首条体重记录）。
func BuildProfile(input OnboardingInput, now time.Time, pref locale.Preference) (model.Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Profile{}, newValidationError("name", "Informe seu nome.")
	}
	birthDate := strings.TrimSpace(input.BirthDate)
	if err := validateBirthDate(birthDate, now); err != nil {
		return model.Profile{}, err
	}
	height := strings.TrimSpace(input.Height)
	if v, err := ParseDecimal(height); err != nil || v <= 0 {
		return model.Profile{}, newValidationError("height", "Informe uma altura válida.")
	}
	weight, err := ParseDecimal(input.Weight)
	if err != nil || weight <= 0 {
		return model.Profile{}, newValidationError("weight", "Informe um peso válido.")
	}
	if !input.Gender.Valid() {
		return model.Profile{}, newValidationError("gender", "Gênero inválido.")
	}

	goal := input.Goal
	if goal == "" {
		goal = model.GoalMaintain
	}
	if !goal.Valid() {
		return model.Profile{}, newValidationError("goal", "Objetivo inválido.")
	}
	activity := input.Activity
	if activity == "" {
		activity = model.ActivitySedentary
	}
	if !activity.Valid() {
		return model.Profile{}, newValidationError("activity", "Nível de atividade inválido.")
	}

	descriptors := map[string]string{
		"abdomen":     input.Abdomen,
		"loveHandles": input.LoveHandles,
		"upperBody":   input.UpperBody,
		"lowerBody":   input.LowerBody,
		"faceNeck":    input.FaceNeck,
	}
	parsed := make(map[string]nutrition.BodyDescriptor, len(descriptors))
	for field, label := range descriptors {
		d, err := nutrition.ParseBodyDescriptor(label)
		if err != nil {
			return model.Profile{}, newValidationError(field, "Opção inválida.")
		}
		parsed[field] = d
	}

	estimate, err := nutrition.Run(nutrition.Answers{
		Gender:    input.Gender,
		Weight:    weight,
		Abdomen:   parsed["abdomen"],
		UpperBody: parsed["upperBody"],
		LowerBody: parsed["lowerBody"],
		Goal:      goal,
	})
	if err != nil {
		return model.Profile{}, newValidationError("", err.Error())
	}

	return model.Profile{
		Name:      name,
		BirthDate: birthDate,
		Height:    height,
		Weight:    FormatWeight(weight),
		Gender:    input.Gender,
		Goal:      goal,
		Activity:  activity,
		BodyShape: model.BodyShape{
			Abdomen:     parsed["abdomen"].String(),
			LoveHandles: parsed["loveHandles"].String(),
			UpperBody:   parsed["upperBody"].String(),
			LowerBody:   parsed["lowerBody"].String(),
			FaceNeck:    parsed["faceNeck"].String(),
		},
		EstimatedBF: estimate.BodyFat,
		TDEE:        estimate.TDEE,
		Targets:     estimate.Targets,
		WeightHistory: []model.WeightRecord{{
			Weight:    weight,
			Date:      pref.ShortDate(now),
			Timestamp: now.UnixMilli(),
		}},
	}, nil
}

func validateBirthDate(birthDate string, now time.Time) error {
	if birthDate == "" {
		return newValidationError("birthDate", "Informe sua data de nascimento.")
	}
	parsed, err := time.Parse(birthDateLayout, birthDate)
	if err != nil {
		return newValidationError("birthDate", "Data de nascimento inválida.")
	}
	if parsed.After(now) {
		return newValidationError("birthDate", "Data de nascimento inválida.")
	}
	return nil
}

// ParseDecimal 解析数字，同时接受逗号作为小数点。
func ParseDecimal(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, strconv.ErrSyntax
	}
	return value, nil
}
