package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutrascan/internal/model"
)

func TestCooldownDaysRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		last time.Time
		want int
	}{
		{name: "never", last: time.Time{}, want: 0},
		{name: "just now", last: now, want: 30},
		{name: "one hour ago", last: now.Add(-time.Hour), want: 30},
		{name: "exactly one day", last: now.Add(-24 * time.Hour), want: 29},
		{name: "29.5 days", last: now.Add(-(29*24 + 12) * time.Hour), want: 1},
		{name: "30 days", last: now.Add(-StrategyCooldown), want: 0},
		{name: "long ago", last: now.AddDate(0, -3, 0), want: 0},
	}
	for _, tc := range cases {
		var last int64
		if !tc.last.IsZero() {
			last = tc.last.UnixMilli()
		}
		if got := CooldownDaysRemaining(last, now); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateStrategy(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	profile := &model.Profile{LastStrategyUpdate: now.Add(-48 * time.Hour).UnixMilli()}

	status := EvaluateStrategy(profile, now, false, false)
	if status.State != StrategyCooling || status.DaysRemaining != 28 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.NextAvailableAt != now.Add(-48*time.Hour).Add(StrategyCooldown).UnixMilli() {
		t.Fatalf("unexpected next available %d", status.NextAvailableAt)
	}
	if got := EvaluateStrategy(&model.Profile{}, now, true, false); got.State != StrategyFetching {
		t.Fatalf("expected fetching, got %+v", got)
	}
	if got := EvaluateStrategy(&model.Profile{}, now, false, true); got.State != StrategyFailed {
		t.Fatalf("expected error state, got %+v", got)
	}
	if got := EvaluateStrategy(nil, now, false, false); got.State != StrategyEligible {
		t.Fatalf("expected eligible, got %+v", got)
	}
}

func TestStrategyWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	entries := []model.DiaryEntry{
		{ID: 3, Timestamp: now.Add(-time.Hour).UnixMilli()},
		{ID: 2, Timestamp: now.Add(-StrategyCooldown).UnixMilli()},
		{ID: 1, Timestamp: now.Add(-StrategyCooldown - time.Millisecond).UnixMilli()},
	}
	window := StrategyWindow(entries, now)
	if len(window) != 2 || window[0].ID != 3 || window[1].ID != 2 {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestStrategyRefreshDuringCooldownNeverCallsCollaborator(t *testing.T) {
	ai := newFakeNutritionAI()
	svc := NewStrategyService(ai)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	profile := model.Profile{LastStrategyUpdate: now.Add(-10 * 24 * time.Hour).UnixMilli()}

	_, err := svc.Refresh(context.Background(), profile, nil, now)
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.DaysRemaining != 20 {
		t.Fatalf("expected 20 days remaining, got %d", cooldown.DaysRemaining)
	}
	if cooldown.Notice() != "Estratégia disponível em 20 dias." {
		t.Fatalf("unexpected notice %q", cooldown.Notice())
	}
	if ai.count("strategy") != 0 {
		t.Fatal("collaborator must not be called during cooldown")
	}
}

func TestStrategyRefreshSuccessAndFailure(t *testing.T) {
	ai := newFakeNutritionAI()
	ai.strategy = model.DietStrategy{Strategy: "Cutting", RecommendedTargets: &model.Macros{Calories: 2000, Protein: 180, Carbs: 180, Fat: 60}}
	svc := NewStrategyService(ai)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	updated, err := svc.Refresh(context.Background(), model.Profile{}, []model.DiaryEntry{{ID: 1, Timestamp: now.UnixMilli()}}, now)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if updated.DietStrategy == nil || updated.DietStrategy.Strategy != "Cutting" {
		t.Fatalf("strategy not stored: %+v", updated.DietStrategy)
	}
	if updated.LastStrategyUpdate != now.UnixMilli() {
		t.Fatalf("last update not advanced: %d", updated.LastStrategyUpdate)
	}
	if len(ai.lastEntries) != 1 {
		t.Fatalf("expected window with 1 entry, got %d", len(ai.lastEntries))
	}

	ai.err = errCollaboratorDown
	original := model.Profile{Name: "Ana"}
	failed, err := svc.Refresh(context.Background(), original, nil, now)
	var collaborator *CollaboratorError
	if !errors.As(err, &collaborator) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
	if failed.LastStrategyUpdate != 0 || failed.DietStrategy != nil {
		t.Fatal("failure must not advance the cooldown")
	}
}

func TestApplyRecommendedTargets(t *testing.T) {
	profile := model.Profile{Targets: model.Macros{Calories: 2500}}

	same, applied := ApplyRecommendedTargets(profile)
	if applied || same.Targets != profile.Targets {
		t.Fatal("expected no-op without strategy")
	}

	profile.DietStrategy = &model.DietStrategy{Strategy: "Manutenção"}
	if _, applied := ApplyRecommendedTargets(profile); applied {
		t.Fatal("expected no-op without recommended targets")
	}

	recommended := model.Macros{Calories: 2300, Protein: 170, Carbs: 250, Fat: 70}
	profile.DietStrategy.RecommendedTargets = &recommended
	updated, applied := ApplyRecommendedTargets(profile)
	if !applied || updated.Targets != recommended {
		t.Fatalf("expected targets copied verbatim, got %+v", updated.Targets)
	}
}
