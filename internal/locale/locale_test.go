package locale

import (
	"testing"
	"time"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "pt", want: LanguagePortuguese},
		{input: "pt-BR", want: LanguagePortuguese},
		{input: "PT_pt", want: LanguagePortuguese},
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "fr", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeLanguage(tc.input); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "pt-BR,pt;q=0.9,en;q=0.8", want: LanguagePortuguese},
		{input: "en-US,en;q=0.9", want: LanguageEnglish},
		{input: "fr-FR,en;q=0.5", want: LanguageEnglish},
		{input: "de", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := LanguageFromAcceptLanguage(tc.input); got != tc.want {
			t.Fatalf("LanguageFromAcceptLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPreferenceForLanguage(t *testing.T) {
	pref := PreferenceForLanguage("en")
	if pref.Language != LanguageEnglish {
		t.Fatalf("expected language %q, got %q", LanguageEnglish, pref.Language)
	}
	if pref.HTMLLang != "en-US" {
		t.Fatalf("expected html lang en-US, got %q", pref.HTMLLang)
	}

	fallback := PreferenceForLanguage("")
	if fallback.Language != LanguagePortuguese {
		t.Fatalf("expected fallback language %q, got %q", LanguagePortuguese, fallback.Language)
	}
}

func TestPortugueseFormats(t *testing.T) {
	pref := PreferenceForLanguage("pt")
	at := time.Date(2025, 3, 7, 8, 5, 0, 0, time.UTC)

	if got := pref.DayKey(at); got != "07/03/2025" {
		t.Fatalf("DayKey = %q", got)
	}
	if got := pref.ShortDate(at); got != "07/03" {
		t.Fatalf("ShortDate = %q", got)
	}
	if got := pref.ClockTime(at); got != "08:05" {
		t.Fatalf("ClockTime = %q", got)
	}

	parsed, err := pref.ParseDayKey("07/03/2025", time.UTC)
	if err != nil {
		t.Fatalf("ParseDayKey returned error: %v", err)
	}
	if !parsed.Equal(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed day %v", parsed)
	}
}

func TestLastDays(t *testing.T) {
	pref := PreferenceForLanguage("pt")
	now := time.Date(2025, 3, 2, 23, 59, 0, 0, time.UTC)

	days := pref.LastDays(now, 3)
	want := []string{"28/02/2025", "01/03/2025", "02/03/2025"}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %v", len(want), days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("day %d = %q, want %q", i, days[i], want[i])
		}
	}
	if pref.LastDays(now, 0) != nil {
		t.Fatal("expected nil for non-positive n")
	}
}

func TestPick(t *testing.T) {
	if got := Pick("en", "english", "português"); got != "english" {
		t.Fatalf("Pick(en) = %q, want %q", got, "english")
	}
	if got := Pick("pt", "english", "português"); got != "português" {
		t.Fatalf("Pick(pt) = %q, want %q", got, "português")
	}
	if got := Pick("fr", "english", "português"); got != "português" {
		t.Fatalf("Pick(fr) = %q, want %q", got, "português")
	}
	if got := Pick("pt", "english", ""); got != "english" {
		t.Fatalf("Pick with empty portuguese = %q", got)
	}
}
