package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/model"
	"github.com/nutrascan/internal/service"
)

const sessionTokenKey = "session_token"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 创建账号并写入会话 cookie
func (a *API) Register(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide username and password.", "Informe usuário e senha.")) {
		return
	}

	session, err := a.controller.Register(payload.Username, payload.Password)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	if !a.saveSessionCookie(c, session) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session,
		"state":   a.controller.State(),
	})
}

// Login 校验凭据并写入会话 cookie
func (a *API) Login(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide username and password.", "Informe usuário e senha.")) {
		return
	}

	session, err := a.controller.Login(payload.Username, payload.Password)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	if !a.saveSessionCookie(c, session) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session,
		"state":   a.controller.State(),
	})
}

// IssueToken 使用凭据登录并返回 Bearer 令牌，供非浏览器客户端使用
func (a *API) IssueToken(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide username and password.", "Informe usuário e senha.")) {
		return
	}

	session, err := a.controller.Login(payload.Username, payload.Password)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	token, expiresAt, err := a.tokens.Issue(session)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, "Failed to create token.", "Falha ao gerar o token."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"tokenType": "Bearer",
		"expiresAt": expiresAt,
		"session":   session,
	})
}

// Logout 清除当前会话，档案与日记保留
func (a *API) Logout(c *gin.Context) {
	if err := a.controller.Logout(); err != nil {
		a.handleServiceError(c, err)
		return
	}
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": a.text(c, "Signed out.", "Sessão encerrada.")})
}

func (a *API) saveSessionCookie(c *gin.Context, current model.Session) bool {
	session := sessions.Default(c)
	session.Set(sessionTokenKey, current.Token)
	session.Set("username", current.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, "Failed to save session.", "Falha ao salvar a sessão."))
		return false
	}
	return true
}

// AuthRequired 接受 Bearer 令牌或会话 cookie，令牌必须对应当前会话
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := a.requestToken(c)
		current, err := a.controller.Authorize(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, a.text(c, "Please sign in.", "Faça login para continuar."))
			c.Abort()
			return
		}
		c.Set(sessionContextKey, current)
		c.Next()
	}
}

func (a *API) requestToken(c *gin.Context) string {
	if raw, err := bearerToken(c.Request); err == nil {
		claims, err := a.tokens.Parse(raw)
		if err != nil {
			return ""
		}
		return claims.ID
	}
	session := sessions.Default(c)
	if token, ok := session.Get(sessionTokenKey).(string); ok {
		return token
	}
	return ""
}

// GetState 返回当前应用状态快照
func (a *API) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": a.controller.State()})
}

// GetNotice 返回未过期的提示，没有时 notice 为 null
func (a *API) GetNotice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notice": a.controller.Notice()})
}

// Me 返回当前会话
func (a *API) Me(c *gin.Context) {
	current, ok := currentSession(c)
	if !ok {
		a.handleServiceError(c, service.ErrNoActiveSession)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": current})
}
