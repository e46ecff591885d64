// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/models"
	"github.com/floramart/floramart-backend/internal/utils"
)

type PaymentService struct {
	db           *gorm.DB
	config       *config.Config
	orderService *OrderService
	notifier     *NotificationService
}

type CreatePaymentIntentRequest struct {
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	Currency string    `json:"currency"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, orderService *OrderService, notifier *NotificationService) *PaymentService {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:           db,
		config:       cfg,
		orderService: orderService,
		notifier:     notifier,
	}
}

// CreatePaymentIntent opens a card payment for a pending order.
func (s *PaymentService) CreatePaymentIntent(buyerID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, payment, err := s.payableOrder(buyerID, req.OrderID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "vnd"
	}

	amount := int64(order.TotalAmount)
	if currency != "vnd" {
		// Zero-decimal currency handling: vnd has no minor unit.
		amount = int64(order.TotalAmount * 100)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("buyer_id", buyerID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(payment).Update("provider_payment_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPayment settles the order's payment from the provider's view of
// the intent, confirms the order, and hands it to the courier.
func (s *PaymentService) ConfirmPayment(buyerID uuid.UUID, req *ConfirmPaymentRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	order, payment, err := s.payableOrder(buyerID, req.OrderID)
	if err != nil {
		return err
	}

	if payment.ProviderPaymentID != req.PaymentIntentID {
		return fmt.Errorf("%w: payment intent does not belong to this order", ErrConflict)
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		now := time.Now()
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(payment).Updates(map[string]interface{}{
				"status":  models.PaymentStatusPaid,
				"paid_at": &now,
			}).Error; err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
			if err := tx.Model(order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
				return fmt.Errorf("failed to confirm order: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if s.orderService != nil {
			go s.orderService.AttachShippingOrder(order.ID)
		}
		if s.notifier != nil {
			s.notifier.Enqueue(NotificationJob{
				UserID:    order.BuyerID,
				Type:      models.NotificationTypeOrder,
				Title:     "Payment received",
				Message:   "Your payment was received and the order is confirmed",
				RelatedID: &order.ID,
				SendEmail: true,
			})
		}
		return nil

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		return fmt.Errorf("%w: payment is still pending confirmation", ErrConflict)

	default:
		if err := s.db.Model(payment).Update("status", models.PaymentStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return fmt.Errorf("%w: payment did not succeed (%s)", ErrConflict, pi.Status)
	}
}

// GetPaymentHistory lists the buyer's payments, newest first.
func (s *PaymentService) GetPaymentHistory(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Payment, int64, error) {
	query := s.db.Model(&models.Payment{}).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.buyer_id = ?", buyerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	query = utils.ApplyPagination(query, params)
	if err := query.Order("payments.created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

// RefundPayment refunds a paid order's payment in full. Admin only; the
// handler enforces the role.
func (s *PaymentService) RefundPayment(orderID uuid.UUID, reason string) error {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("payment %w", ErrNotFound)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if payment.Status != models.PaymentStatusPaid {
		return fmt.Errorf("%w: only paid payments can be refunded", ErrConflict)
	}

	if payment.Method == "card" && payment.ProviderPaymentID != "" {
		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(payment.ProviderPaymentID),
			Reason:        stripe.String("requested_by_customer"),
		}
		if _, err := refund.New(params); err != nil {
			return fmt.Errorf("failed to process refund: %w", err)
		}
	}

	if err := s.db.Model(&payment).Update("status", models.PaymentStatusRefunded).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err == nil && s.notifier != nil {
		s.notifier.Enqueue(NotificationJob{
			UserID:    order.BuyerID,
			Type:      models.NotificationTypeOrder,
			Title:     "Payment refunded",
			Message:   fmt.Sprintf("Your payment was refunded: %s", reason),
			RelatedID: &order.ID,
			SendEmail: true,
		})
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"amount":   payment.Amount,
	}).Info("Payment refunded")

	return nil
}

func (s *PaymentService) payableOrder(buyerID uuid.UUID, orderID uuid.UUID) (*models.Order, *models.Payment, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("order %w", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if order.BuyerID != buyerID {
		return nil, nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}

	var payment models.Payment
	if err := s.db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("payment %w", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if payment.Status == models.PaymentStatusPaid {
		return nil, nil, fmt.Errorf("%w: order is already paid", ErrConflict)
	}

	return &order, &payment, nil
}
