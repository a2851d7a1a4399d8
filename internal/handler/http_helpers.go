package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/service"
	"github.com/nutrascan/internal/storage"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseInt64Param(c *gin.Context, key string) (int64, error) {
	raw := strings.TrimSpace(c.Param(key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

// handleServiceError 将服务层错误映射为状态码与面向用户的提示
func (a *API) handleServiceError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var cooldown *service.CooldownError
	var collaborator *service.CollaboratorError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.As(err, &cooldown):
		message := a.text(c, cooldown.EnglishNotice(), cooldown.Notice())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":         message,
			"daysRemaining": cooldown.DaysRemaining,
			"notice":        a.controller.Notice(),
		})
	case errors.As(err, &collaborator):
		c.Error(err)
		respondError(c, http.StatusBadGateway, a.text(c, service.FallbackMessageEnglish, service.FallbackMessage))
	case errors.Is(err, storage.ErrPersistence):
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, "Could not save your data.", "Não foi possível salvar seus dados."))
	case errors.Is(err, service.ErrAccountNotFound):
		respondError(c, http.StatusNotFound, a.text(c, "Account not found.", "Usuário não encontrado."))
	case errors.Is(err, service.ErrWrongPassword):
		respondError(c, http.StatusUnauthorized, a.text(c, "Wrong password.", "Senha incorreta."))
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, a.text(c, "Username already exists.", "Usuário já existe."))
	case errors.Is(err, service.ErrNoActiveSession):
		respondError(c, http.StatusUnauthorized, a.text(c, "Please sign in.", "Faça login para continuar."))
	case errors.Is(err, service.ErrProfileRequired):
		respondError(c, http.StatusConflict, a.text(c, "Complete onboarding first.", "Conclua o cadastro inicial."))
	case errors.Is(err, service.ErrRequestInFlight):
		respondError(c, http.StatusConflict, a.text(c, "A request is already running.", "Uma solicitação já está em andamento."))
	case errors.Is(err, service.ErrSessionChanged):
		respondError(c, http.StatusConflict, a.text(c, "The active account changed.", "A conta ativa mudou."))
	case errors.Is(err, service.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, a.text(c, "Entry not found.", "Registro não encontrado."))
	case errors.Is(err, service.ErrNoDraft):
		respondError(c, http.StatusNotFound, a.text(c, "No pending analysis.", "Nenhuma análise pendente."))
	case errors.Is(err, service.ErrAIAPIKeyMissing):
		respondError(c, http.StatusBadRequest, a.text(c, "Please provide a valid AI API key.", "Informe uma chave de API válida."))
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, "Operation failed.", "Falha na operação."))
	}
}
