package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound 登录时用户名不存在
	ErrAccountNotFound = errors.New("account not found")
	// ErrWrongPassword 密码与账号记录不匹配
	ErrWrongPassword = errors.New("wrong password")
	// ErrUsernameTaken 注册时用户名已存在
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNoActiveSession 需要登录态的操作在未登录时调用
	ErrNoActiveSession = errors.New("no active session")
	// ErrProfileRequired 档案尚未通过引导流程创建
	ErrProfileRequired = errors.New("profile required")
	// ErrRequestInFlight 同类 AI 请求正在进行
	ErrRequestInFlight = errors.New("request already in flight")
	// ErrSessionChanged AI 调用期间当前账号发生变化，结果被丢弃
	ErrSessionChanged = errors.New("session changed during request")
	// ErrEntryNotFound 日记中找不到指定 id 的记录
	ErrEntryNotFound = errors.New("diary entry not found")
	// ErrNoDraft 当前没有待确认的分析结果
	ErrNoDraft = errors.New("no pending analysis")
	// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
	ErrAIAPIKeyMissing = errors.New("api key is required")
)

// ValidationError 表示输入不合法，Message 可直接展示给用户。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// CooldownError 表示策略仍在冷却期内。
type CooldownError struct {
	DaysRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("strategy refresh available in %d days", e.DaysRemaining)
}

// Notice 返回展示给用户的提示文案。
func (e *CooldownError) Notice() string {
	return fmt.Sprintf("Estratégia disponível em %d dias.", e.DaysRemaining)
}

// EnglishNotice 是 Notice 的英文版本
func (e *CooldownError) EnglishNotice() string {
	return fmt.Sprintf("Strategy available in %d days.", e.DaysRemaining)
}

// CollaboratorError 包装 AI 协作方的任意失败：网络、配置、缺少 Key 或输出无法解析。
type CollaboratorError struct {
	Kind string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("ai %s: %v", e.Kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// FallbackMessage 是协作方失败时展示给用户的通用文案
const FallbackMessage = "Análise indisponível no momento."

// FallbackMessageEnglish 是 FallbackMessage 的英文版本
const FallbackMessageEnglish = "Analysis unavailable right now."

func collaboratorError(kind string, err error) error {
	var existing *CollaboratorError
	if errors.As(err, &existing) {
		return err
	}
	return &CollaboratorError{Kind: kind, Err: err}
}
