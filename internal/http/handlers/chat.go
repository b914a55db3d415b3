package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// POST /api/chat
// body: { "message": "..." }
func (h *ChatHandler) Send(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.chat.Send(c.Request.Context(), req.Message)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": reply.Response, "history": reply.History})
}

// GET /api/chat/history
func (h *ChatHandler) History(c *gin.Context) {
	history, err := h.chat.History(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": history})
}

// DELETE /api/chat/history
func (h *ChatHandler) Clear(c *gin.Context) {
	if err := h.chat.Clear(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Chat history cleared."})
}
