package handlers

import (
	"net/http"

	historyRepo "verdebot/database/repository/history"
	"verdebot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler serves the booking history of a user.
type HistoryHandler struct {
	Repo   historyRepo.BookingHistoryRepository
	Logger *zap.Logger
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(repo historyRepo.BookingHistoryRepository, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{Repo: repo, Logger: logger}
}

// ListByUser returns all confirmed bookings of a user, newest first.
func (h *HistoryHandler) ListByUser(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "userId is required")
		return
	}

	records, err := h.Repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("history lookup failed", zap.String("user", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}
