// internal/services/chat_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/models"
)

type ChatServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ChatService
	buyer   *models.User
	seller  *models.User
}

func (suite *ChatServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewChatService(suite.db, nil, nil)
	suite.buyer = createTestUser(suite.T(), suite.db, models.UserRoleBuyer)
	suite.seller = createTestUser(suite.T(), suite.db, models.UserRoleSeller)
}

func (suite *ChatServiceTestSuite) startConversation() *models.Conversation {
	conversation, err := suite.service.CreateConversation(suite.buyer.ID, &CreateConversationRequest{
		SellerID: suite.seller.ID,
		BuyerID:  suite.buyer.ID,
	})
	suite.Require().NoError(err)
	return conversation
}

func (suite *ChatServiceTestSuite) TestCreateConversationIsIdempotent() {
	first := suite.startConversation()

	// The seller asking for the same pair gets the same row back.
	second, err := suite.service.CreateConversation(suite.seller.ID, &CreateConversationRequest{
		SellerID: suite.seller.ID,
		BuyerID:  suite.buyer.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	var count int64
	suite.db.Model(&models.Conversation{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *ChatServiceTestSuite) TestCreateConversationPairIsUnordered() {
	first := suite.startConversation()

	// Swapping the role designations still refers to the same two users,
	// so no second conversation appears.
	swapped, err := suite.service.CreateConversation(suite.buyer.ID, &CreateConversationRequest{
		SellerID: suite.buyer.ID,
		BuyerID:  suite.seller.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(first.ID, swapped.ID)

	var active int64
	suite.db.Model(&models.Conversation{}).Where("is_active = ?", true).Count(&active)
	suite.Equal(int64(1), active)
}

func (suite *ChatServiceTestSuite) TestCreateConversationNotifiesCounterpart() {
	notifier := NewNotificationService(suite.db, newTestConfig(), nil)
	suite.service = NewChatService(suite.db, nil, notifier)

	conversation := suite.startConversation()
	for drained := false; !drained; {
		select {
		case job := <-notifier.jobs:
			notifier.deliver(job)
		default:
			drained = true
		}
	}

	// The buyer started it, so the seller hears about it.
	var notifications []models.Notification
	suite.Require().NoError(suite.db.Where("user_id = ?", suite.seller.ID).Find(&notifications).Error)
	suite.Require().Len(notifications, 1)
	suite.Equal(models.NotificationTypeChat, notifications[0].Type)
	suite.Equal(conversation.ID, *notifications[0].RelatedID)

	// The idempotent path stays quiet.
	suite.startConversation()
	select {
	case job := <-notifier.jobs:
		suite.Failf("unexpected notification", "title %q", job.Title)
	default:
	}
}

func (suite *ChatServiceTestSuite) TestCreateConversationWithSelfRejected() {
	_, err := suite.service.CreateConversation(suite.seller.ID, &CreateConversationRequest{
		SellerID: suite.seller.ID,
		BuyerID:  suite.seller.ID,
	})
	suite.Error(err)
}

func (suite *ChatServiceTestSuite) TestCreateConversationRequiresParticipant() {
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)

	_, err := suite.service.CreateConversation(stranger.ID, &CreateConversationRequest{
		SellerID: suite.seller.ID,
		BuyerID:  suite.buyer.ID,
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ChatServiceTestSuite) TestIsParticipant() {
	conversation := suite.startConversation()
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)

	suite.True(suite.service.IsParticipant(suite.buyer.ID, conversation.ID))
	suite.True(suite.service.IsParticipant(suite.seller.ID, conversation.ID))
	suite.False(suite.service.IsParticipant(stranger.ID, conversation.ID))
}

func (suite *ChatServiceTestSuite) TestSendMessageUpdatesLastMessage() {
	conversation := suite.startConversation()

	message, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "Do you have fresh tulips?",
	})
	suite.Require().NoError(err)
	suite.False(message.IsRead)

	var reloaded models.Conversation
	suite.db.First(&reloaded, conversation.ID)
	suite.Require().NotNil(reloaded.LastMessageID)
	suite.Equal(message.ID, *reloaded.LastMessageID)
}

func (suite *ChatServiceTestSuite) TestSendEmptyMessageRejected() {
	conversation := suite.startConversation()

	_, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "   ",
	})
	suite.Error(err)

	// An image alone is enough.
	_, err = suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		ImageURL:       "/uploads/chat/bouquet.jpg",
	})
	suite.NoError(err)
}

func (suite *ChatServiceTestSuite) TestSendMessageRequiresParticipant() {
	conversation := suite.startConversation()
	stranger := createTestUser(suite.T(), suite.db, models.UserRoleBuyer)

	_, err := suite.service.SendMessage(stranger.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "let me in",
	})
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ChatServiceTestSuite) TestHistoryOrderAndReadMarking() {
	conversation := suite.startConversation()

	for _, content := range []string{"first", "second", "third"} {
		_, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
			ConversationID: conversation.ID,
			Content:        content,
		})
		suite.Require().NoError(err)
	}

	messages, total, err := suite.service.GetHistory(suite.seller.ID, conversation.ID, &ChatHistoryParams{})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Require().Len(messages, 3)
	suite.Equal("third", messages[0].Content)
	suite.Equal("first", messages[2].Content)

	// Reading the history marked the buyer's messages read.
	var unread int64
	suite.db.Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ?", conversation.ID, false).
		Count(&unread)
	suite.Zero(unread)
}

func (suite *ChatServiceTestSuite) TestMarkReadOnlyTouchesCounterpart() {
	conversation := suite.startConversation()

	_, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "from buyer",
	})
	suite.Require().NoError(err)
	_, err = suite.service.SendMessage(suite.seller.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "from seller",
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.MarkRead(suite.seller.ID, conversation.ID))

	// The seller's own outgoing message stays unread.
	var unread []models.Message
	suite.db.Where("conversation_id = ? AND is_read = ?", conversation.ID, false).Find(&unread)
	suite.Require().Len(unread, 1)
	suite.Equal(suite.seller.ID, unread[0].SenderID)
}

func (suite *ChatServiceTestSuite) TestConversationsCarryUnreadCount() {
	conversation := suite.startConversation()

	for i := 0; i < 2; i++ {
		_, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
			ConversationID: conversation.ID,
			Content:        "ping",
		})
		suite.Require().NoError(err)
	}

	summaries, err := suite.service.GetConversations(suite.seller.ID)
	suite.Require().NoError(err)
	suite.Require().Len(summaries, 1)
	suite.Equal(int64(2), summaries[0].UnreadCount)

	// The sender sees no unread messages of their own.
	summaries, err = suite.service.GetConversations(suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(summaries, 1)
	suite.Zero(summaries[0].UnreadCount)
}

func (suite *ChatServiceTestSuite) TestDeleteMessageSenderOnly() {
	conversation := suite.startConversation()

	message, err := suite.service.SendMessage(suite.buyer.ID, &SendMessageRequest{
		ConversationID: conversation.ID,
		Content:        "oops wrong chat",
	})
	suite.Require().NoError(err)

	suite.ErrorIs(suite.service.DeleteMessage(suite.seller.ID, message.ID), ErrForbidden)
	suite.Require().NoError(suite.service.DeleteMessage(suite.buyer.ID, message.ID))

	// Deleted messages drop out of history.
	messages, total, err := suite.service.GetHistory(suite.buyer.ID, conversation.ID, &ChatHistoryParams{})
	suite.Require().NoError(err)
	suite.Zero(total)
	suite.Empty(messages)
}

func TestChatServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChatServiceTestSuite))
}
