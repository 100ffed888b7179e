package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teambot/internal/app"
	"teambot/internal/transport/http/middleware"
	"teambot/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageRequest struct {
	BotID          string `json:"botId" binding:"required"`
	Content        string `json:"content" binding:"required"`
	ConversationID string `json:"conversationId"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:         userID,
		BotID:          req.BotID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	detail, err := h.chatService.GetConversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, detail)
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	conversations, err := h.chatService.ListConversations(userID, c.Query("botId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, conversations)
}

func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	conversationID := c.Param("id")

	if err := h.chatService.DeleteConversation(c.Request.Context(), userID, conversationID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"deletedConversationId": conversationID})
}
