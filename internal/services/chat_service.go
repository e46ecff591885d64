// internal/services/chat_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/realtime"
	"github.com/floramart/floramart-backend/internal/utils"
)

type ChatService struct {
	db       *gorm.DB
	hub      *realtime.Hub
	notifier *NotificationService
}

type CreateConversationRequest struct {
	SellerID uuid.UUID `json:"seller_id" validate:"required"`
	BuyerID  uuid.UUID `json:"buyer_id" validate:"required"`
}

type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" validate:"required"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url"`
}

type ChatHistoryParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func NewChatService(db *gorm.DB, hub *realtime.Hub, notifier *NotificationService) *ChatService {
	return &ChatService{
		db:       db,
		hub:      hub,
		notifier: notifier,
	}
}

// CreateConversation finds or creates the single active conversation for
// a seller/buyer pair. The pair is unordered for lookup purposes: either
// participant may initiate, and repeat calls return the existing row.
func (s *ChatService) CreateConversation(actorID uuid.UUID, req *CreateConversationRequest) (*models.Conversation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.SellerID == req.BuyerID {
		return nil, errors.New("cannot start a conversation with yourself")
	}
	if actorID != req.SellerID && actorID != req.BuyerID {
		return nil, fmt.Errorf("%w: you are not a participant", ErrForbidden)
	}

	for _, id := range []uuid.UUID{req.SellerID, req.BuyerID} {
		var user models.User
		if err := s.db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user %w", ErrNotFound)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	// The pair is unordered: the same two users share one conversation no
	// matter which of them is designated seller in the request.
	const activePair = "((seller_id = ? AND buyer_id = ?) OR (seller_id = ? AND buyer_id = ?)) AND is_active = ?"

	var conversation models.Conversation
	err := s.db.Preload("Seller").Preload("Buyer").Preload("LastMessage").
		Where(activePair, req.SellerID, req.BuyerID, req.BuyerID, req.SellerID, true).
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	conversation = models.Conversation{
		SellerID: req.SellerID,
		BuyerID:  req.BuyerID,
		IsActive: true,
	}
	if err := s.db.Create(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent create for the same pair; return the winner.
			if err := s.db.Preload("Seller").Preload("Buyer").
				Where(activePair, req.SellerID, req.BuyerID, req.BuyerID, req.SellerID, true).
				First(&conversation).Error; err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			return &conversation, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.db.Preload("Seller").Preload("Buyer").First(&conversation, conversation.ID)

	// A fresh conversation is worth telling the other side about; the
	// idempotent path above returns before reaching here.
	counterpartID := req.SellerID
	starter := conversation.Buyer.Username
	if actorID == req.SellerID {
		counterpartID = req.BuyerID
		starter = conversation.Seller.Username
	}
	if s.notifier != nil {
		s.notifier.Enqueue(NotificationJob{
			UserID:    counterpartID,
			Type:      models.NotificationTypeChat,
			Title:     "New conversation",
			Message:   fmt.Sprintf("%s started a conversation with you", starter),
			RelatedID: &conversation.ID,
		})
	}

	return &conversation, nil
}

// SendMessage persists a message, bumps the conversation's last-message
// pointer in the same transaction, then fans out to connected clients.
func (s *ChatService) SendMessage(senderID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && req.ImageURL == "" {
		return nil, errors.New("message must have content or an image")
	}

	conversation, err := s.participantConversation(senderID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
		ImageURL:       req.ImageURL,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(conversation).Update("last_message_id", message.ID).Error; err != nil {
			return fmt.Errorf("failed to update conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Sender").First(&message, message.ID)

	// Fan-out only after the durable write.
	if s.hub != nil {
		s.hub.BroadcastToConversation(conversation.ID, realtime.Event{
			Event: realtime.EventReceiveMessage,
			Data:  message,
		})
	}

	recipientID := conversation.SellerID
	if senderID == conversation.SellerID {
		recipientID = conversation.BuyerID
	}
	if s.notifier != nil {
		s.notifier.NotifyChatMessage(recipientID, message.Sender.Username, conversation.ID)
	}

	return &message, nil
}

// GetHistory returns a page of messages, newest first, and marks the
// counterpart's messages in the page as read.
func (s *ChatService) GetHistory(userID uuid.UUID, conversationID uuid.UUID, params *ChatHistoryParams) ([]models.Message, int64, error) {
	conversation, err := s.participantConversation(userID, conversationID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND is_deleted = ?", conversation.ID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var messages []models.Message
	if err := query.Preload("Sender").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load messages: %w", err)
	}

	// Reading history implies seeing the counterpart's messages.
	if err := s.markCounterpartRead(userID, conversation); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkRead marks all of the counterpart's messages as read and notifies
// the conversation group so senders can update their receipts.
func (s *ChatService) MarkRead(userID uuid.UUID, conversationID uuid.UUID) error {
	conversation, err := s.participantConversation(userID, conversationID)
	if err != nil {
		return err
	}
	return s.markCounterpartRead(userID, conversation)
}

func (s *ChatService) markCounterpartRead(userID uuid.UUID, conversation *models.Conversation) error {
	result := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversation.ID, userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark messages read: %w", result.Error)
	}

	if result.RowsAffected > 0 && s.hub != nil {
		s.hub.BroadcastToConversation(conversation.ID, realtime.Event{
			Event: realtime.EventMessagesRead,
			Data: map[string]interface{}{
				"conversation_id": conversation.ID,
				"reader_id":       userID,
			},
		})
	}
	return nil
}

// GetConversations lists the user's active conversations, most recently
// updated first, with the unread message count per conversation.
func (s *ChatService) GetConversations(userID uuid.UUID) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	if err := s.db.Preload("Seller").Preload("Buyer").Preload("LastMessage").
		Where("(seller_id = ? OR buyer_id = ?) AND is_active = ?", userID, userID, true).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for i := range conversations {
		var unread int64
		if err := s.db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id != ? AND is_read = ? AND is_deleted = ?",
				conversations[i].ID, userID, false, false).
			Count(&unread).Error; err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}
		summaries = append(summaries, ConversationSummary{
			Conversation: conversations[i],
			UnreadCount:  unread,
		})
	}

	return summaries, nil
}

type ConversationSummary struct {
	models.Conversation
	UnreadCount int64 `json:"unread_count"`
}

// DeleteMessage soft-hides a message the sender regrets. The row stays
// for the counterpart's history integrity.
func (s *ChatService) DeleteMessage(userID uuid.UUID, messageID uuid.UUID) error {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("message %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if message.SenderID != userID {
		return fmt.Errorf("%w: not your message", ErrForbidden)
	}

	if err := s.db.Model(&message).Update("is_deleted", true).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// IsParticipant reports whether the user belongs to the active
// conversation. The realtime hub uses it to gate group subscriptions.
func (s *ChatService) IsParticipant(userID uuid.UUID, conversationID uuid.UUID) bool {
	_, err := s.participantConversation(userID, conversationID)
	return err == nil
}

func (s *ChatService) participantConversation(userID uuid.UUID, conversationID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := s.db.First(&conversation, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !conversation.IsActive {
		return nil, fmt.Errorf("%w: conversation is closed", ErrConflict)
	}
	if conversation.SellerID != userID && conversation.BuyerID != userID {
		return nil, fmt.Errorf("%w: you are not a participant", ErrForbidden)
	}

	return &conversation, nil
}
