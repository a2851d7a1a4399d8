package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nutrascan/internal/locale"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/storage"
)

// NoticeDuration 提示信息的展示时长
const NoticeDuration = 3 * time.Second

const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice 是自动过期的一次性提示
type Notice struct {
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expiresAt"`
}

const (
	requestAnalysis    = "analysis"
	requestImpact      = "impact"
	requestInsights    = "insights"
	requestStrategy    = "strategy"
	requestSuggestions = "suggestions"
)

// ControllerOptions 可选依赖，零值使用默认实现。
type ControllerOptions struct {
	Clock             Clock
	Language          string
	Location          *time.Location
	ImageMaxDimension int
}

// Controller 持有当前设备上的全部应用状态：会话、档案、日记、待确认的分析与提示。
// 状态修改由互斥锁串行化，AI 调用在锁外进行。
type Controller struct {
	mu sync.Mutex

	accounts *AccountService
	profiles *ProfileService
	diary    *DiaryService
	strategy *StrategyService
	ai       NutritionAI
	images   *ImageService

	clock Clock
	// pref 决定持久化的日期键与时间格式，固定为 pt-BR，与界面语言无关
	pref     locale.Preference
	language string
	loc      *time.Location

	session        *model.Session
	profile        *model.Profile
	entries        []model.DiaryEntry
	draft          *Draft
	notice         *Notice
	inFlight       map[string]bool
	strategyFailed bool
	// generation 在每次会话切换时递增，用于丢弃过期的 AI 结果
	generation uint64
}

// NewController 构造 Controller，并从存储中恢复上次的会话。
func NewController(store storage.Store, ai NutritionAI, opts ControllerOptions) (*Controller, error) {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	c := &Controller{
		accounts: NewAccountService(store),
		profiles: NewProfileService(store),
		diary:    NewDiaryService(store),
		strategy: NewStrategyService(ai),
		ai:       ai,
		images:   NewImageService(opts.ImageMaxDimension),
		clock:    clock,
		pref:     locale.PreferenceForLanguage(locale.LanguagePortuguese),
		language: locale.NormalizeLanguage(opts.Language),
		loc:      loc,
		entries:  []model.DiaryEntry{},
		inFlight: make(map[string]bool),
	}

	if err := c.restore(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) now() time.Time {
	return c.clock.Now().In(c.loc)
}

// restore 恢复上次的会话。档案或日记快照损坏时以未登录状态启动，
// 再次登录会重新读取并返回同样的持久化错误。
func (c *Controller) restore() error {
	session, err := c.accounts.RestoreSession()
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if err := c.activate(*session); err != nil {
		if !errors.Is(err, storage.ErrPersistence) {
			return err
		}
		log.Printf("[controller] restore session %s failed, starting signed out: %v", session.ID, err)
		if clearErr := c.accounts.Logout(); clearErr != nil {
			return clearErr
		}
		c.resetLocked()
	}
	return nil
}

// activate 加载账号的档案与日记；调用方需持有锁或处于构造阶段。
func (c *Controller) activate(session model.Session) error {
	profile, err := c.profiles.Load(session.ID)
	if err != nil {
		return err
	}
	entries, err := c.diary.Load(session.ID)
	if err != nil {
		return err
	}

	c.resetLocked()
	c.session = &session
	c.profile = profile
	c.entries = entries
	return nil
}

// resetLocked 整体清空内存中的账号状态
func (c *Controller) resetLocked() {
	c.session = nil
	c.profile = nil
	c.entries = []model.DiaryEntry{}
	c.draft = nil
	c.notice = nil
	c.strategyFailed = false
	c.generation++
}

// Register 创建账号并切换到该账号。
func (c *Controller) Register(username, password string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, session, err := c.accounts.Register(username, password)
	if err != nil {
		return model.Session{}, err
	}
	if err := c.activate(session); err != nil {
		return model.Session{}, c.abandonSessionLocked(err)
	}
	return session, nil
}

// Login 校验凭据并切换到该账号。
func (c *Controller) Login(username, password string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.accounts.Login(username, password)
	if err != nil {
		return model.Session{}, err
	}
	if err := c.activate(session); err != nil {
		return model.Session{}, c.abandonSessionLocked(err)
	}
	return session, nil
}

// abandonSessionLocked 在账号数据无法加载时撤销刚写入的会话指针
func (c *Controller) abandonSessionLocked(cause error) error {
	if err := c.accounts.Logout(); err != nil {
		return errors.Join(cause, err)
	}
	c.resetLocked()
	return cause
}

// Logout 清除持久化会话并重置内存状态，档案与日记保留在存储中。
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.accounts.Logout(); err != nil {
		return err
	}
	c.resetLocked()
	return nil
}

// Session 返回当前会话，未登录时为 nil。
func (c *Controller) Session() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

// Authorize 校验客户端持有的会话令牌是否对应当前会话。
func (c *Controller) Authorize(token string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || token == "" || c.session.Token != token {
		return model.Session{}, ErrNoActiveSession
	}
	return *c.session, nil
}

func (c *Controller) requireSessionLocked() (model.Session, error) {
	if c.session == nil {
		return model.Session{}, ErrNoActiveSession
	}
	return *c.session, nil
}

func (c *Controller) requireProfileLocked() (model.Session, model.Profile, error) {
	session, err := c.requireSessionLocked()
	if err != nil {
		return model.Session{}, model.Profile{}, err
	}
	if c.profile == nil {
		return model.Session{}, model.Profile{}, ErrProfileRequired
	}
	return session, cloneProfile(*c.profile), nil
}

// AppState 是当前状态的快照
type AppState struct {
	Session         *model.Session `json:"session"`
	Profile         *model.Profile `json:"profile"`
	NeedsOnboarding bool           `json:"needsOnboarding"`
	Today           string         `json:"today"`
	Strategy        StrategyStatus `json:"strategy"`
	Notice          *Notice        `json:"notice"`
	HasDraft        bool           `json:"hasDraft"`
}

// State 返回当前状态快照。
func (c *Controller) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	state := AppState{
		Today:    c.pref.DayKey(now),
		Strategy: EvaluateStrategy(c.profile, now, c.inFlight[requestStrategy], c.strategyFailed),
		Notice:   c.activeNoticeLocked(now),
		HasDraft: c.draft != nil,
	}
	if c.session != nil {
		session := *c.session
		state.Session = &session
		state.NeedsOnboarding = c.profile == nil
	}
	if c.profile != nil {
		profile := cloneProfile(*c.profile)
		state.Profile = &profile
	}
	return state
}

// Notice 返回仍在有效期内的提示。
func (c *Controller) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeNoticeLocked(c.now())
}

func (c *Controller) activeNoticeLocked(now time.Time) *Notice {
	if c.notice == nil {
		return nil
	}
	if !now.Before(c.notice.ExpiresAt) {
		c.notice = nil
		return nil
	}
	notice := *c.notice
	return &notice
}

func (c *Controller) setNoticeLocked(kind, message string) {
	c.notice = &Notice{Kind: kind, Message: message, ExpiresAt: c.now().Add(NoticeDuration)}
}

// beginRequestLocked 登记一次 AI 请求，同类请求并发时快速失败。
func (c *Controller) beginRequestLocked(kind string) (uint64, error) {
	if c.inFlight[kind] {
		return 0, ErrRequestInFlight
	}
	c.inFlight[kind] = true
	return c.generation, nil
}

func (c *Controller) endRequest(kind string) {
	c.mu.Lock()
	delete(c.inFlight, kind)
	c.mu.Unlock()
}

func (c *Controller) staleLocked(generation uint64) bool {
	return c.generation != generation
}

func cloneProfile(p model.Profile) model.Profile {
	clone := p
	if p.WeightHistory != nil {
		clone.WeightHistory = append([]model.WeightRecord(nil), p.WeightHistory...)
	} else {
		clone.WeightHistory = []model.WeightRecord{}
	}
	if p.DietStrategy != nil {
		strategy := *p.DietStrategy
		strategy.RecommendedFoods = append([]string(nil), p.DietStrategy.RecommendedFoods...)
		if p.DietStrategy.RecommendedTargets != nil {
			targets := *p.DietStrategy.RecommendedTargets
			strategy.RecommendedTargets = &targets
		}
		clone.DietStrategy = &strategy
	}
	return clone
}

func cloneEntries(entries []model.DiaryEntry) []model.DiaryEntry {
	out := make([]model.DiaryEntry, len(entries))
	for i, entry := range entries {
		out[i] = entry
		out[i].Items = append([]model.FoodItem(nil), entry.Items...)
	}
	return out
}
