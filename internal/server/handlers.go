package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"CharacterChat/internal/ai"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Messages       []ai.Turn      `json:"messages"`
	ProviderParams map[string]any `json:"providerParams"`
	Voice          bool           `json:"voice"`
}

type audioPayload struct {
	Data     string `json:"data"` // base64
	MimeType string `json:"mimeType"`
}

type chatResponse struct {
	Reply string        `json:"reply"`
	Audio *audioPayload `json:"audio,omitempty"`
}

type imageRequest struct {
	Prompt         string         `json:"prompt"`
	Mode           string         `json:"mode"` // generate|edit
	ImageURL       string         `json:"imageUrl"`
	ProviderParams map[string]any `json:"providerParams"`
}

type imageResponse struct {
	Image       string `json:"image"` // base64
	Description string `json:"description,omitempty"`
}

// Chat — POST /api/chat: текстовый ход, опционально с озвучкой ответа.
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages are required"})
		return
	}
	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message content must not be empty"})
			return
		}
	}

	res, err := h.turns.ChatTurn(c.Request.Context(), req.Messages, req.ProviderParams, req.Voice)
	if err != nil {
		h.logger.Errorw("Текстовый ход завершился ошибкой", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := chatResponse{Reply: res.Reply}
	if res.Audio != nil {
		resp.Audio = &audioPayload{
			Data:     base64.StdEncoding.EncodeToString(res.Audio.Data),
			MimeType: res.Audio.MimeType,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Image — POST /api/image: генерация или правка изображения.
func (h *Handlers) Image(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	edit := false
	switch req.Mode {
	case "", "generate":
	case "edit":
		edit = true
		if strings.TrimSpace(req.ImageURL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required for edit mode"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be generate or edit"})
		return
	}

	res, err := h.turns.ImageTurn(c.Request.Context(), req.Prompt, edit, req.ImageURL, req.ProviderParams)
	if err != nil {
		h.logger.Errorw("Ход изображения завершился ошибкой", "mode", req.Mode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, imageResponse{
		Image:       base64.StdEncoding.EncodeToString(res.Image),
		Description: res.Description,
	})
}
