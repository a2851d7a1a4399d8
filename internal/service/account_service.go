package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	namespaceAccounts = "accounts"
	namespaceSession  = "session"
	sessionKeyCurrent = "current"

	minPasswordLength = 6
	// bcrypt 只接受 72 字节以内的密码
	maxPasswordBytes = 72
)

// AccountService 管理本地账号与当前会话指针。
type AccountService struct {
	store storage.Store
}

// NewAccountService 构造 AccountService。
func NewAccountService(store storage.Store) *AccountService {
	return &AccountService{store: store}
}

// NormalizeUsername 去除首尾空白、转小写并删除所有空白字符。
func NormalizeUsername(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, lowered)
}

func validateUsername(username string) error {
	if username == "" {
		return newValidationError("username", "Informe um nome de usuário.")
	}
	if strings.ContainsAny(username, `/\`) || username == "." || username == ".." {
		return newValidationError("username", "Nome de usuário inválido.")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return newValidationError("password", "Senha deve ter 6+ caracteres.")
	}
	if len(password) > maxPasswordBytes {
		return newValidationError("password", "Senha muito longa (máximo de 72 bytes).")
	}
	return nil
}

// Register 创建账号并直接登录。
func (s *AccountService) Register(rawUsername, password string) (model.Account, model.Session, error) {
	account, err := s.Create(rawUsername, password)
	if err != nil {
		return model.Account{}, model.Session{}, err
	}
	session, err := s.startSession(account)
	if err != nil {
		return model.Account{}, model.Session{}, err
	}
	return account, session, nil
}

// Create 只创建账号，不修改当前会话。返回值不含密码哈希。
func (s *AccountService) Create(rawUsername, password string) (model.Account, error) {
	username := NormalizeUsername(rawUsername)
	if err := validateUsername(username); err != nil {
		return model.Account{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.Account{}, err
	}

	if _, err := s.find(username); err == nil {
		return model.Account{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return model.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := model.Account{ID: username, Username: username, PasswordHash: string(hash)}
	if err := storage.SetJSON(s.store, namespaceAccounts, username, account); err != nil {
		return model.Account{}, fmt.Errorf("save account: %w", err)
	}
	account.PasswordHash = ""
	return account, nil
}

// Login 校验凭据并持久化新的会话。旧版明文密码在校验通过后升级为 bcrypt 哈希。
func (s *AccountService) Login(rawUsername, password string) (model.Session, error) {
	username := NormalizeUsername(rawUsername)
	if err := validateUsername(username); err != nil {
		return model.Session{}, err
	}

	account, err := s.find(username)
	if err != nil {
		return model.Session{}, err
	}

	switch {
	case account.PasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
			return model.Session{}, ErrWrongPassword
		}
	case account.LegacyPassword != "":
		if subtle.ConstantTimeCompare([]byte(account.LegacyPassword), []byte(password)) != 1 {
			return model.Session{}, ErrWrongPassword
		}
		// 超长的旧密码无法转成 bcrypt，继续按明文校验
		if len(password) <= maxPasswordBytes {
			if err := s.upgradeLegacy(&account, password); err != nil {
				return model.Session{}, err
			}
		}
	default:
		return model.Session{}, ErrWrongPassword
	}

	return s.startSession(account)
}

func (s *AccountService) upgradeLegacy(account *model.Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = string(hash)
	account.LegacyPassword = ""
	if account.ID == "" {
		account.ID = account.Username
	}
	if err := storage.SetJSON(s.store, namespaceAccounts, account.Username, account); err != nil {
		return fmt.Errorf("upgrade account: %w", err)
	}
	return nil
}

// Exists reports whether an account is registered under the normalized username.
func (s *AccountService) Exists(rawUsername string) (bool, error) {
	_, err := s.find(NormalizeUsername(rawUsername))
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List 返回全部已注册的用户名，按字母排序
func (s *AccountService) List() ([]string, error) {
	keys, err := s.store.Keys(namespaceAccounts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *AccountService) find(username string) (model.Account, error) {
	if username == "" {
		return model.Account{}, ErrAccountNotFound
	}
	var account model.Account
	if err := storage.GetJSON(s.store, namespaceAccounts, username, &account); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return model.Account{}, ErrAccountNotFound
		}
		return model.Account{}, fmt.Errorf("load account: %w", err)
	}
	if account.Username == "" {
		account.Username = username
	}
	return account, nil
}

// storedSession 是 session/current 的持久化形式，保留令牌
type storedSession struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	Token    string `json:"token"`
}

func (s *AccountService) startSession(account model.Account) (model.Session, error) {
	id := account.ID
	if id == "" {
		id = account.Username
	}
	session := model.Session{Username: account.Username, ID: id, Token: uuid.NewString()}
	stored := storedSession{Username: session.Username, ID: session.ID, Token: session.Token}
	if err := storage.SetJSON(s.store, namespaceSession, sessionKeyCurrent, stored); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// RestoreSession 读取持久化的会话指针，不存在时返回 nil。
func (s *AccountService) RestoreSession() (*model.Session, error) {
	var stored storedSession
	if err := storage.GetJSON(s.store, namespaceSession, sessionKeyCurrent, &stored); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if stored.ID == "" {
		return nil, nil
	}
	return &model.Session{Username: stored.Username, ID: stored.ID, Token: stored.Token}, nil
}

// Logout 清除持久化的会话，档案与日记保留。
func (s *AccountService) Logout() error {
	if err := s.store.Delete(namespaceSession, sessionKeyCurrent); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
