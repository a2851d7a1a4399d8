package nutrition

import (
	"errors"
	"testing"
	"time"

	"github.com/nutrascan/internal/model"
)

func sampleAnalysis() model.FoodAnalysis {
	items := []model.FoodItem{
		{Name: "Arroz", Weight: 150, Calories: 195, Protein: 4, Carbs: 42, Fat: 0.4},
		{Name: "Frango grelhado", Weight: 120, Calories: 198, Protein: 37, Carbs: 0, Fat: 4.3},
	}
	return model.FoodAnalysis{Items: items, Totals: SumItems(items)}
}

func TestEditPortionScalesFromOriginal(t *testing.T) {
	original := sampleAnalysis()

	edited, err := EditPortion(original, original, 0, 100)
	if err != nil {
		t.Fatalf("EditPortion returned error: %v", err)
	}
	item := edited.Items[0]
	if item.Weight != 100 || item.Calories != 130 || item.Protein != 3 || item.Carbs != 28 || item.Fat != 0 {
		t.Fatalf("unexpected scaled item %+v", item)
	}
	if edited.Totals != SumItems(edited.Items) {
		t.Fatalf("totals must equal sum of items, got %+v", edited.Totals)
	}

	// 来回编辑不会产生漂移
	current := edited
	for _, w := range []float64{37, 211, 99, 150} {
		current, err = EditPortion(original, current, 0, w)
		if err != nil {
			t.Fatalf("EditPortion(%v) returned error: %v", w, err)
		}
	}
	if current.Items[0] != (model.FoodItem{Name: "Arroz", Weight: 150, Calories: 195, Protein: 4, Carbs: 42, Fat: 0}) {
		t.Fatalf("expected values derived from original after round trip, got %+v", current.Items[0])
	}
	if current.Items[1] != original.Items[1] {
		t.Fatalf("untouched item should be preserved, got %+v", current.Items[1])
	}
}

func TestEditPortionRejectsBadInput(t *testing.T) {
	original := sampleAnalysis()
	if _, err := EditPortion(original, original, 5, 10); !errors.Is(err, ErrItemIndex) {
		t.Fatalf("expected ErrItemIndex, got %v", err)
	}
	if _, err := EditPortion(original, original, 0, -1); !errors.Is(err, ErrInvalidPortion) {
		t.Fatalf("expected ErrInvalidPortion, got %v", err)
	}
}

func TestScaleItemWithZeroOriginalWeight(t *testing.T) {
	got, err := ScaleItem(model.FoodItem{Name: "Molho", Weight: 0, Calories: 10}, 3)
	if err != nil {
		t.Fatalf("ScaleItem returned error: %v", err)
	}
	if got.Calories != 30 {
		t.Fatalf("expected unit base ratio, got %+v", got)
	}
}

func TestDayTotalsMatchesEntriesOfThatDay(t *testing.T) {
	entries := []model.DiaryEntry{
		{ID: 3, Date: "02/03/2025", Totals: model.Macros{Calories: 500, Protein: 30, Carbs: 50, Fat: 10}},
		{ID: 2, Date: "01/03/2025", Totals: model.Macros{Calories: 700, Protein: 40, Carbs: 80, Fat: 20}},
		{ID: 1, Date: "02/03/2025", Totals: model.Macros{Calories: 300, Protein: 20, Carbs: 10, Fat: 5}},
	}

	got := DayTotals(entries, "02/03/2025")
	want := model.Macros{Calories: 800, Protein: 50, Carbs: 60, Fat: 15}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if empty := DayTotals(entries, "03/03/2025"); empty != (model.Macros{}) {
		t.Fatalf("expected zero totals for empty day, got %+v", empty)
	}
}

func TestRemainingAndProgress(t *testing.T) {
	remaining := Remaining(model.Macros{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		model.Macros{Calories: 2500, Protein: 100, Carbs: 50, Fat: 70})
	want := model.Macros{Calories: 0, Protein: 50, Carbs: 150, Fat: 0}
	if remaining != want {
		t.Fatalf("expected %+v, got %+v", want, remaining)
	}

	if got := Progress(50, 200); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := Progress(300, 200); got != 100 {
		t.Fatalf("expected cap at 100, got %v", got)
	}
	if got := Progress(0.5, 0); got != 50 {
		t.Fatalf("expected zero target to fall back to 1, got %v", got)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		birth string
		want  int
	}{
		{birth: "1990-06-15", want: 35},
		{birth: "1990-06-16", want: 34},
		{birth: "1990-12-01", want: 34},
		{birth: "", want: 0},
		{birth: "15/06/1990", want: 0},
		{birth: "2030-01-01", want: 0},
	}
	for _, tc := range cases {
		if got := Age(tc.birth, now); got != tc.want {
			t.Fatalf("Age(%q) = %d, want %d", tc.birth, got, tc.want)
		}
	}
}
