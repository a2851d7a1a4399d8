package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/service"
	"github.com/nutrascan/internal/storage"
	"github.com/nutrascan/internal/testutil"
)

type stubNutritionAI struct {
	analysis    model.FoodAnalysis
	impact      string
	insights    []model.Insight
	strategy    model.DietStrategy
	suggestions string
	err         error
	calls       map[string]int
}

func newStubNutritionAI() *stubNutritionAI {
	return &stubNutritionAI{
		calls: make(map[string]int),
		analysis: model.FoodAnalysis{Items: []model.FoodItem{
			{Name: "Arroz", Weight: 100, Calories: 130, Protein: 3, Carbs: 28, Fat: 0},
			{Name: "Feijão", Weight: 80, Calories: 70, Protein: 5, Carbs: 12, Fat: 1},
		}},
	}
}

func (s *stubNutritionAI) AnalyzeFoodImage(ctx context.Context, imageDataURL, description string) (model.FoodAnalysis, error) {
	s.calls["food"]++
	if s.err != nil {
		return model.FoodAnalysis{}, s.err
	}
	return model.FoodAnalysis{Items: append([]model.FoodItem(nil), s.analysis.Items...)}, nil
}

func (s *stubNutritionAI) AnalyzeMealImpact(ctx context.Context, totals model.Macros, goal model.Goal) (string, error) {
	s.calls["impact"]++
	return s.impact, s.err
}

func (s *stubNutritionAI) GenerateInsights(ctx context.Context, entries []model.DiaryEntry) ([]model.Insight, error) {
	s.calls["insights"]++
	return s.insights, s.err
}

func (s *stubNutritionAI) DietStrategy(ctx context.Context, profile model.Profile, recent []model.DiaryEntry) (model.DietStrategy, error) {
	s.calls["strategy"]++
	return s.strategy, s.err
}

func (s *stubNutritionAI) MealSuggestions(ctx context.Context, remaining model.Macros, goal model.Goal) (string, error) {
	s.calls["suggestions"]++
	return s.suggestions, s.err
}

type handlerFixture struct {
	router *gin.Engine
	api    *API
	ai     *stubNutritionAI
	clock  *testutil.StubClock
	tokens *TokenIssuer
	cookie []*http.Cookie
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	ai := newStubNutritionAI()
	clock := testutil.FixedClock()

	controller, err := service.NewController(store, ai, service.ControllerOptions{
		Clock:    clock,
		Language: "pt",
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	settings := service.NewAISettingsService(store, service.AISettings{Provider: service.AIProviderGemini}, nil)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	tokens.now = clock.Now

	api := NewAPI(controller, settings, tokens, "pt")

	r := gin.New()
	r.Use(sessions.Sessions("nutrascan_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(api.LocaleMiddleware())
	r.GET("/api/onboarding/questions", api.GetOnboardingQuestions)
	r.GET("/api/settings/ai", api.GetAISettings)
	r.PUT("/api/settings/ai", api.UpdateAISettings)
	r.DELETE("/api/settings/ai", api.ClearAISettings)
	r.POST("/api/settings/ai/test", api.TestAIConnection)
	r.POST("/api/auth/register", api.Register)
	r.POST("/api/auth/login", api.Login)
	r.POST("/api/auth/token", api.IssueToken)

	auth := r.Group("/api")
	auth.Use(api.AuthRequired())
	auth.GET("/auth/me", api.Me)
	auth.POST("/auth/logout", api.Logout)
	auth.GET("/state", api.GetState)
	auth.GET("/notice", api.GetNotice)
	auth.POST("/onboarding", api.CompleteOnboarding)
	auth.GET("/profile", api.GetProfile)
	auth.PATCH("/profile", api.UpdateProfile)
	auth.PUT("/profile/targets", api.UpdateTargets)
	auth.POST("/profile/avatar", api.UploadAvatar)
	auth.POST("/profile/weight", api.RecordWeight)
	auth.GET("/diary", api.ListEntries)
	auth.GET("/diary/summary", api.GetDailySummary)
	auth.GET("/diary/week", api.GetWeekOverview)
	auth.PUT("/diary/:id", api.UpdateEntry)
	auth.DELETE("/diary/:id", api.DeleteEntry)
	auth.POST("/analysis", api.AnalyzeMeal)
	auth.GET("/analysis", api.GetDraft)
	auth.PUT("/analysis/items/:index", api.EditDraftItem)
	auth.POST("/analysis/commit", api.CommitDraft)
	auth.POST("/analysis/impact", api.MealImpact)
	auth.DELETE("/analysis", api.DiscardDraft)
	auth.GET("/insights", api.GetInsights)
	auth.GET("/suggestions", api.GetSuggestions)
	auth.GET("/strategy", api.GetStrategy)
	auth.POST("/strategy/refresh", api.RefreshStrategy)
	auth.POST("/strategy/apply", api.ApplyStrategyTargets)

	return &handlerFixture{router: r, api: api, ai: ai, clock: clock, tokens: tokens}
}

func (f *handlerFixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range f.cookie {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		for _, c := range cookies {
			if c.Name == "nutrascan_session" {
				f.cookie = []*http.Cookie{c}
			}
		}
	}
	return rr
}

func (f *handlerFixture) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.do(t, req)
}

func (f *handlerFixture) register(t *testing.T) {
	t.Helper()
	rr := f.doJSON(t, http.MethodPost, "/api/auth/register", gin.H{"username": "ana", "password": "segredo1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rr.Code, rr.Body.String())
	}
}

func (f *handlerFixture) onboard(t *testing.T) {
	t.Helper()
	f.register(t)
	rr := f.doJSON(t, http.MethodPost, "/api/onboarding", gin.H{
		"name":      "Ana",
		"birthDate": "1992-04-20",
		"height":    "165",
		"weight":    "80",
		"gender":    "M",
		"goal":      "manter",
		"abdomen":   "Normal",
		"upperBody": "Normal",
		"lowerBody": "Normal",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("onboarding failed: %d %s", rr.Code, rr.Body.String())
	}
}

func (f *handlerFixture) uploadMeal(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, multipartRequest(t, "/api/analysis", "image", testPNG(t)))
}

func multipartRequest(t *testing.T, path, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "meal.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 4), B: uint8(y * 4), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}
