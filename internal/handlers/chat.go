// internal/handlers/chat.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/floramart/floramart-backend/internal/realtime"
	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

type ChatHandler struct {
	chatService    *services.ChatService
	storageService *services.StorageService
	hub            *realtime.Hub
}

func NewChatHandler(chatService *services.ChatService, storageService *services.StorageService, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		storageService: storageService,
		hub:            hub,
	}
}

// POST /chat/create
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	conversation, err := h.chatService.CreateConversation(actorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, conversation)
}

// GET /chat/conversations
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.chatService.GetConversations(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, conversations)
}

// POST /chat/send. Multipart so a message can carry an image.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.PostForm("conversation_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid conversation_id", nil)
		return
	}

	req := services.SendMessageRequest{
		ConversationID: conversationID,
		Content:        c.PostForm("content"),
	}

	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		if err := h.storageService.ValidateImage(file); err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("chat"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		req.ImageURL = result.URL
	}

	message, err := h.chatService.SendMessage(senderID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}

// GET /chat/history/:id
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := services.ChatHistoryParams{Page: page, PageSize: pageSize}

	messages, total, err := h.chatService.GetHistory(userID, conversationID, &params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, messages, gin.H{"total": total})
}

// POST /chat/conversations/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.chatService.MarkRead(userID, conversationID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"read": true})
}

// DELETE /chat/messages/:id
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.chatService.DeleteMessage(userID, messageID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// GET /ws upgrades to the realtime channel.
func (h *ChatHandler) ServeWS(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	realtime.ServeWS(h.hub, c.Writer, c.Request, userID)
}
