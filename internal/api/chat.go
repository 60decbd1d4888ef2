package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"support-chatbot/internal/chat"
	"support-chatbot/internal/common/validation"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

// maxChatBodyBytes bounds the POST /api/chat body.
const maxChatBodyBytes = 64 << 10

// Chat handles POST /api/chat.
func (h *Handler) Chat(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxChatBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read request body"})
	}

	if result := validation.ValidateJSON(validation.ChatRequestSchema, raw); !result.Valid {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid request",
			"details": result.Errors,
		})
	}

	var req models.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	resp, err := h.chat.Reply(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	case errors.Is(err, dataaccess.ErrConversationExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": "conversation_id already in use"})
	default:
		return h.detail(c, "Internal server error", err)
	}
}

// ListConversations handles GET /api/conversations.
func (h *Handler) ListConversations(c echo.Context) error {
	records, err := h.data.RecentConversations(c.Request().Context(), dataaccess.DefaultRecentConversations)
	if err != nil {
		return h.detail(c, "Failed to retrieve conversations", err)
	}
	return c.JSON(http.StatusOK, records)
}
