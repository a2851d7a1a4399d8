package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AnalyzeMeal 接收餐食图片（multipart 字段 image），压缩后交给协作方识别
func (a *API) AnalyzeMeal(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Please attach a meal photo.", "Envie uma imagem da refeição."))
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Could not read the image.", "Não foi possível ler a imagem."))
		return
	}
	defer src.Close()

	draft, err := a.controller.AnalyzeImage(c.Request.Context(), src, c.PostForm("description"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"draft": draft})
}

// UploadAvatar 压缩并保存头像
func (a *API) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Please attach an image.", "Envie uma imagem."))
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Could not read the image.", "Não foi possível ler a imagem."))
		return
	}
	defer src.Close()

	profile, err := a.controller.SetAvatar(src)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetDraft 返回待确认的分析
func (a *API) GetDraft(c *gin.Context) {
	draft, err := a.controller.Draft()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

type draftItemRequest struct {
	Weight float64 `json:"weight"`
}

// EditDraftItem 修改草稿中某个食物的重量
func (a *API) EditDraftItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Invalid item.", "Item inexistente."))
		return
	}
	var payload draftItemRequest
	if !bindJSON(c, &payload, a.text(c, "Please provide a valid weight.", "Informe um peso válido.")) {
		return
	}

	draft, err := a.controller.EditDraftItem(index, payload.Weight)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// CommitDraft 将草稿写入日记
func (a *API) CommitDraft(c *gin.Context) {
	entry, err := a.controller.CommitDraft()
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// DiscardDraft 丢弃草稿
func (a *API) DiscardDraft(c *gin.Context) {
	if err := a.controller.DiscardDraft(); err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": a.text(c, "Analysis discarded.", "Análise descartada.")})
}

// MealImpact 评估草稿对目标的影响
func (a *API) MealImpact(c *gin.Context) {
	impact, err := a.controller.MealImpact(c.Request.Context())
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"impact": impact, "html": renderNarrative(c, impact)})
}
