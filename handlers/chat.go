package handlers

import (
	"context"
	"net/http"
	"time"

	"verdebot/services/conversation"
	"verdebot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// turnTimeout bounds one whole conversational turn, collaborators included.
const turnTimeout = 15 * time.Second

// ChatHandler exposes the inbound message webhook.
type ChatHandler struct {
	Convo  conversation.ConversationService
	Logger *zap.Logger
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(convo conversation.ConversationService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Convo: convo, Logger: logger}
}

// HandleMessage processes one inbound message and returns the reply text.
func (h *ChatHandler) HandleMessage(c *gin.Context) {
	var input struct {
		UserID string `json:"userId" binding:"required"`
		Text   string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
	defer cancel()

	reply, err := h.Convo.HandleTurn(ctx, input.UserID, input.Text)
	if err != nil {
		h.Logger.Error("turn failed", zap.String("user", input.UserID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
