package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"go.uber.org/zap"
)

// Order represents a payment order created at the gateway
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay orders API
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient httpclient.Client
}

// NewClient creates a new payment gateway client
func NewClient(baseURL, keyID, keySecret string, httpClient httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &Client{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: httpClient,
	}
}

// CreateOrder creates an order at the gateway. Amount is in the currency's
// smallest unit (paise for INR).
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	start := time.Now()
	operation := "createOrder"

	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.PaymentOrders.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("razorpay", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PaymentOrders.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("failed to read payment gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.PaymentOrders.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("razorpay", operation, "error", duration,
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		metrics.PaymentOrders.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	metrics.PaymentOrders.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("razorpay", operation, "success", duration,
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount))

	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 signature the gateway sends back
// after checkout. The signed message is "<order_id>|<payment_id>".
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
