package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roadlink/car-booking-backend/internal/apperrors"
	"github.com/roadlink/car-booking-backend/internal/config"
	"github.com/sirupsen/logrus"
)

// PaymentService integrates with the Razorpay payment gateway: it creates
// orders ahead of payment and verifies the signature the gateway returns
// after the customer pays. Order lifecycle beyond that is the gateway's own.
type PaymentService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg *config.PaymentConfig, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Order is the gateway order the client pays against
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder registers an order with the gateway. Amount is in the
// smallest currency unit (paise).
func (s *PaymentService) CreateOrder(amount int64, receipt string) (*Order, error) {
	if s.config.KeyID == "" || s.config.KeySecret == "" {
		return nil, fmt.Errorf("payment gateway not configured: missing key credentials")
	}
	if amount <= 0 {
		return nil, apperrors.Validation("invalid booking amount")
	}

	body, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: s.config.Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.config.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.config.KeyID, s.config.KeySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"receipt": receipt,
		}).Error("Payment gateway rejected order")
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
		"receipt":  receipt,
	}).Info("Payment order created")

	return &order, nil
}

// VerifySignature checks the gateway callback signature: HMAC-SHA256 over
// "<orderID>|<paymentID>" with the key secret, hex encoded. A mismatch is
// fatal to the payment attempt and is never retried automatically.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.config.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		s.logger.WithField("order_id", orderID).Warn("Payment signature mismatch")
		return apperrors.PaymentVerification()
	}

	return nil
}

// OrderReceipt builds the receipt reference attached to a gateway order
func OrderReceipt() string {
	return fmt.Sprintf("receipt_booking_%d", time.Now().UnixMilli())
}
