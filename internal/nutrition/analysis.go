package nutrition

import (
	"errors"
	"math"

	"github.com/nutrascan/internal/model"
)

var (
	ErrItemIndex      = errors.New("food item index out of range")
	ErrInvalidPortion = errors.New("portion weight must be a non-negative number")
)

// DefaultTargets apply when no profile exists yet.
var DefaultTargets = model.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

// SumItems returns the field-wise sum of items.
func SumItems(items []model.FoodItem) model.Macros {
	var total model.Macros
	for _, item := range items {
		total = total.Add(item.Macros())
	}
	return total
}

// ScaleItem rescales original to weight grams. Scaling is always relative to
// the AI estimate, never to a previously edited value, so repeated edits do
// not accumulate rounding error.
func ScaleItem(original model.FoodItem, weight float64) (model.FoodItem, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return model.FoodItem{}, ErrInvalidPortion
	}

	base := original.Weight
	if base <= 0 {
		base = 1
	}
	ratio := weight / base

	return model.FoodItem{
		Name:     original.Name,
		Weight:   weight,
		Calories: math.Round(original.Calories * ratio),
		Protein:  math.Round(original.Protein * ratio),
		Carbs:    math.Round(original.Carbs * ratio),
		Fat:      math.Round(original.Fat * ratio),
	}, nil
}

// EditPortion returns a copy of current with item index rescaled from
// original and totals recomputed.
func EditPortion(original, current model.FoodAnalysis, index int, weight float64) (model.FoodAnalysis, error) {
	if index < 0 || index >= len(original.Items) || index >= len(current.Items) {
		return model.FoodAnalysis{}, ErrItemIndex
	}

	scaled, err := ScaleItem(original.Items[index], weight)
	if err != nil {
		return model.FoodAnalysis{}, err
	}

	items := make([]model.FoodItem, len(current.Items))
	copy(items, current.Items)
	items[index] = scaled

	return model.FoodAnalysis{Items: items, Totals: SumItems(items)}, nil
}

// DayTotals sums the totals of entries whose date key equals day.
func DayTotals(entries []model.DiaryEntry, day string) model.Macros {
	var total model.Macros
	for _, entry := range entries {
		if entry.Date == day {
			total = total.Add(entry.Totals)
		}
	}
	return total
}

// Remaining is targets minus consumed, floored at zero per field.
func Remaining(targets, consumed model.Macros) model.Macros {
	return model.Macros{
		Calories: math.Max(0, targets.Calories-consumed.Calories),
		Protein:  math.Max(0, targets.Protein-consumed.Protein),
		Carbs:    math.Max(0, targets.Carbs-consumed.Carbs),
		Fat:      math.Max(0, targets.Fat-consumed.Fat),
	}
}

// Progress returns consumed/target as a percentage capped at 100.
func Progress(consumed, target float64) float64 {
	if target <= 0 {
		target = 1
	}
	return math.Min(consumed/target*100, 100)
}
