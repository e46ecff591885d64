// internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/realtime"
)

// chatNotificationWindow suppresses repeat chat notifications for the
// same conversation while an unread one from this window still exists.
const chatNotificationWindow = 5 * time.Minute

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	hub    *realtime.Hub
	jobs   chan NotificationJob
}

// NotificationJob is a queued delivery request. Jobs are persisted and
// fanned out by the dispatcher; enqueueing never blocks the caller.
type NotificationJob struct {
	UserID    uuid.UUID
	Type      models.NotificationType
	Title     string
	Message   string
	RelatedID *uuid.UUID
	SendEmail bool
}

type NotificationListParams struct {
	Page     int  `form:"page"`
	PageSize int  `form:"page_size"`
	Unread   bool `form:"unread"`
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, hub *realtime.Hub) *NotificationService {
	return &NotificationService{
		db:     db,
		config: cfg,
		hub:    hub,
		jobs:   make(chan NotificationJob, 256),
	}
}

// Run drains the job queue until ctx is cancelled. Meant to be started
// once as a goroutine from main.
func (s *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.deliver(job)
		}
	}
}

// Enqueue hands a job to the dispatcher. If the queue is full the job
// is delivered inline rather than dropped.
func (s *NotificationService) Enqueue(job NotificationJob) {
	select {
	case s.jobs <- job:
	default:
		s.deliver(job)
	}
}

func (s *NotificationService) deliver(job NotificationJob) {
	notification := models.Notification{
		UserID:    job.UserID,
		Type:      job.Type,
		Title:     job.Title,
		Message:   job.Message,
		RelatedID: job.RelatedID,
		IsActive:  true,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		logrus.WithError(err).WithField("user_id", job.UserID).
			Error("Failed to persist notification")
		return
	}

	if s.hub != nil {
		s.hub.PushToUser(job.UserID, realtime.Event{
			Event: realtime.EventReceiveNotification,
			Data:  notification,
		})
	}

	if job.SendEmail {
		var user models.User
		if err := s.db.First(&user, job.UserID).Error; err == nil {
			if err := s.sendEmail(user.Email, job.Title, job.Message); err != nil {
				logrus.WithError(err).Warn("Failed to send notification email")
			}
		}
	}
}

// NotifyChatMessage creates a chat notification for the recipient unless
// an unread one for the same conversation was created recently. Keeps a
// burst of messages from producing a notification per message.
func (s *NotificationService) NotifyChatMessage(recipientID uuid.UUID, senderName string, conversationID uuid.UUID) {
	var count int64
	since := time.Now().Add(-chatNotificationWindow)
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND related_id = ? AND is_read = ? AND created_at > ?",
			recipientID, models.NotificationTypeChat, conversationID, false, since).
		Count(&count).Error; err != nil {
		logrus.WithError(err).Warn("Failed to check recent chat notifications")
		return
	}
	if count > 0 {
		return
	}

	s.Enqueue(NotificationJob{
		UserID:    recipientID,
		Type:      models.NotificationTypeChat,
		Title:     "New message",
		Message:   fmt.Sprintf("%s sent you a message", senderName),
		RelatedID: &conversationID,
	})
}

func (s *NotificationService) List(userID uuid.UUID, params *NotificationListParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if params.Unread {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_active = ?", userID, false, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification as read. Marking an already-read
// notification is a no-op, not an error.
func (s *NotificationService) MarkRead(userID uuid.UUID, notificationID uuid.UUID) error {
	var notification models.Notification
	if err := s.db.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if notification.UserID != userID {
		return fmt.Errorf("%w: not your notification", ErrForbidden)
	}

	if notification.IsRead {
		return nil
	}

	if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithField("to", to).Debug("Email not configured, skipping send")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
