package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrascan/internal/service"
)

// ListEntries 返回完整日记，最新在前
func (a *API) ListEntries(c *gin.Context) {
	entries, err := a.controller.Entries()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetDailySummary 返回指定日期（?date=，默认今天）的合计、进度与剩余量
func (a *API) GetDailySummary(c *gin.Context) {
	summary, err := a.controller.DailySummary(c.Query("date"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetWeekOverview 返回最近 7 天的日期条
func (a *API) GetWeekOverview(c *gin.Context) {
	days, err := a.controller.WeekOverview()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// UpdateEntry 修改日记记录的合计与时间
func (a *API) UpdateEntry(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid entry id.", "ID de registro inválido."))
		return
	}
	var payload service.EntryUpdate
	if !bindJSON(c, &payload, a.text(c, "Invalid entry data.", "Dados do registro inválidos.")) {
		return
	}

	entry, err := a.controller.UpdateEntry(id, payload)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry 按 id 删除日记记录
func (a *API) DeleteEntry(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid entry id.", "ID de registro inválido."))
		return
	}

	if err := a.controller.RemoveEntry(id); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": a.text(c, "Entry removed.", "Registro removido.")})
}
