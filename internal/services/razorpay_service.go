package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"

	"cabletv-backend/internal/models"
	"cabletv-backend/internal/store"
)

// RazorpayService backs the online payment method: it creates gateway orders
// for a customer's outstanding amount and records captured payments through
// the regular Payment Collector, so online money follows the same
// reconciliation path as cash.
type RazorpayService struct {
	settings store.SettingStore
	payments *PaymentService

	// Fallback credentials from environment, used when settings are unset.
	envKeyID         string
	envKeySecret     string
	envWebhookSecret string
}

func NewRazorpayService(keyID, keySecret, webhookSecret string, settings store.SettingStore, payments *PaymentService) *RazorpayService {
	return &RazorpayService{
		settings:         settings,
		payments:         payments,
		envKeyID:         keyID,
		envKeySecret:     keySecret,
		envWebhookSecret: webhookSecret,
	}
}

// getCredentials returns credentials from settings first, env second.
func (s *RazorpayService) getCredentials(ctx context.Context) (keyID, keySecret, webhookSecret string) {
	if setting, err := s.settings.Get(ctx, models.SettingRazorpayKeyID); err == nil && setting.SettingValue != "" {
		keyID = setting.SettingValue
	}
	if setting, err := s.settings.Get(ctx, models.SettingRazorpayKeySecret); err == nil && setting.SettingValue != "" {
		keySecret = setting.SettingValue
	}
	if setting, err := s.settings.Get(ctx, models.SettingRazorpayWebhookSecret); err == nil && setting.SettingValue != "" {
		webhookSecret = setting.SettingValue
	}
	if keyID == "" {
		keyID = s.envKeyID
	}
	if keySecret == "" {
		keySecret = s.envKeySecret
	}
	if webhookSecret == "" {
		webhookSecret = s.envWebhookSecret
	}
	return keyID, keySecret, webhookSecret
}

// IsEnabled checks the online-payments toggle; credentials are validated
// only when an order is actually created.
func (s *RazorpayService) IsEnabled(ctx context.Context) bool {
	setting, err := s.settings.Get(ctx, models.SettingOnlinePaymentEnabled)
	if err != nil {
		return false
	}
	return setting.SettingValue == "true"
}

// CreateOrder opens a gateway order for the given amount in rupees.
// Razorpay wants paise.
func (s *RazorpayService) CreateOrder(ctx context.Context, customerID int, amount float64, receipt string) (map[string]interface{}, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	keyID, keySecret, _ := s.getCredentials(ctx)
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials not configured")
	}

	client := razorpay.NewClient(keyID, keySecret)
	order, err := client.Order.Create(map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  receipt,
		"notes": map[string]interface{}{
			"customer_id": fmt.Sprintf("%d", customerID),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}

	order["key_id"] = keyID
	return order, nil
}

// VerifyPaymentSignature checks the checkout callback signature
// (HMAC-SHA256 of "orderID|paymentID" with the key secret).
func (s *RazorpayService) VerifyPaymentSignature(ctx context.Context, orderID, paymentID, signature string) bool {
	_, keySecret, _ := s.getCredentials(ctx)
	if keySecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body.
func (s *RazorpayService) VerifyWebhookSignature(ctx context.Context, body []byte, signature string) bool {
	_, _, webhookSecret := s.getCredentials(ctx)
	if webhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// RecordCapturedPayment books a verified gateway capture as an online
// payment against the customer. amount is in rupees.
//
// Gateway delivery is at-least-once: the checkout verify callback and the
// capture webhook both fire for the same payment, and webhooks are retried.
// A capture that is already booked is returned as-is, not recorded again.
func (s *RazorpayService) RecordCapturedPayment(ctx context.Context, customerID int, billID *int, amount float64, orderID, paymentID string) (*models.Payment, error) {
	existing, err := s.payments.FindByGatewayPaymentID(ctx, paymentID)
	if err == nil {
		log.Printf("[Razorpay] payment %s already recorded as %s, skipping",
			paymentID, existing.ReceiptNumber)
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check gateway payment %s: %w", paymentID, err)
	}

	payment, err := s.payments.CollectPayment(ctx, models.CollectPaymentRequest{
		CustomerID:       customerID,
		BillID:           billID,
		AmountPaid:       amount,
		Method:           models.PaymentOnline,
		Notes:            fmt.Sprintf("razorpay order %s payment %s", orderID, paymentID),
		GatewayPaymentID: paymentID,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Razorpay] recorded online payment %s for customer %d (₹%.2f)",
		payment.ReceiptNumber, customerID, amount)
	return payment, nil
}
