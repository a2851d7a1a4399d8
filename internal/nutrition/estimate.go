package nutrition

import (
	"errors"
	"math"

	"github.com/nutrascan/internal/model"
)

const (
	minBodyFat         = 5
	maxBodyFat         = 45
	maleBaseline       = 14
	femaleBaseline     = 22
	activityFactor     = 1.35
	cutDeficit         = 500
	bulkSurplus        = 400
	proteinPerKg       = 2.2
	fatPerKg           = 0.9
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

var (
	ErrInvalidWeight = errors.New("weight must be a positive number")
	ErrInvalidGender = errors.New("gender must be M or F")
	ErrInvalidGoal   = errors.New("goal must be emagrecer, manter or hipertrofia")
)

// Answers are the onboarding inputs the engine consumes.
type Answers struct {
	Gender    model.Gender
	Weight    float64
	Abdomen   BodyDescriptor
	UpperBody BodyDescriptor
	LowerBody BodyDescriptor
	Goal      model.Goal
}

// Estimate is the engine output stored on the profile at onboarding.
type Estimate struct {
	BodyFat float64
	TDEE    float64
	Targets model.Macros
}

// BodyFatEstimate is a visual heuristic, not a clinical measurement: a
// gender baseline shifted by the three region descriptors, clamped to [5, 45].
func BodyFatEstimate(gender model.Gender, abdomen, upper, lower BodyDescriptor) float64 {
	baseline := maleBaseline
	if gender == model.GenderFemale {
		baseline = femaleBaseline
	}
	score := abdomen.Score() + upper.Score() + lower.Score()
	return clamp(float64(baseline+score), minBodyFat, maxBodyFat)
}

// TDEE applies a Katch-McArdle style resting energy formula to the lean mass
// and scales it by a fixed 1.35 activity factor.
func TDEE(weight, bodyFat float64) float64 {
	lean := weight * (1 - bodyFat/100)
	return math.Round((370 + 21.6*lean) * activityFactor)
}

// TargetCalories adjusts tdee for the goal.
func TargetCalories(tdee float64, goal model.Goal) float64 {
	switch goal {
	case model.GoalCut:
		return tdee - cutDeficit
	case model.GoalBulk:
		return tdee + bulkSurplus
	default:
		return tdee
	}
}

// Targets derives the macro split. Carbs fill the remaining calories after
// protein and fat floors and never go below zero.
func Targets(weight, calories float64) model.Macros {
	protein := math.Round(weight * proteinPerKg)
	fat := math.Round(weight * fatPerKg)
	carbs := math.Round((calories - protein*kcalPerGramProtein - fat*kcalPerGramFat) / kcalPerGramCarbs)
	if carbs < 0 {
		carbs = 0
	}
	return model.Macros{Calories: calories, Protein: protein, Carbs: carbs, Fat: fat}
}

// Run validates the answers and computes every onboarding output.
func Run(a Answers) (Estimate, error) {
	if !a.Gender.Valid() {
		return Estimate{}, ErrInvalidGender
	}
	if !a.Goal.Valid() {
		return Estimate{}, ErrInvalidGoal
	}
	if math.IsNaN(a.Weight) || math.IsInf(a.Weight, 0) || a.Weight <= 0 {
		return Estimate{}, ErrInvalidWeight
	}

	bf := BodyFatEstimate(a.Gender, a.Abdomen, a.UpperBody, a.LowerBody)
	tdee := TDEE(a.Weight, bf)
	calories := TargetCalories(tdee, a.Goal)

	return Estimate{
		BodyFat: bf,
		TDEE:    tdee,
		Targets: Targets(a.Weight, calories),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
