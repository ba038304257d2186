package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/pkg/httpclient"
	"github.com/algospace/algospace-api/pkg/logger"
)

func init() {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "development"})
}

type fakeHTTPClient struct {
	do func(req *http.Request) (*http.Response, error)
}

func (f *fakeHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) Get(url string) (*http.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return f.do(req)
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		keyID, keySecret, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", keyID)
		assert.Equal(t, "secret_test", keySecret)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(49900), payload["amount"])
		assert.Equal(t, "INR", payload["currency"])
		assert.Equal(t, "plan_abc_123", payload["receipt"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_Nf7x2",
			Amount:   49900,
			Currency: "INR",
			Receipt:  "plan_abc_123",
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_test", "secret_test", httpclient.NewStandardClient())

	order, err := client.CreateOrder(context.Background(), 49900, "INR", "plan_abc_123")
	require.NoError(t, err)
	assert.Equal(t, "order_Nf7x2", order.ID)
	assert.Equal(t, int64(49900), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	client := NewClient("https://api.razorpay.com", "key_test", "secret_test", &fakeHTTPClient{
		do: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, err := client.CreateOrder(context.Background(), 100, "INR", "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment gateway")
}

func TestCreateOrder_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key_test", "secret_test", httpclient.NewStandardClient())

	_, err := client.CreateOrder(context.Background(), 100, "INR", "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("", "key_test", "secret_test", httpclient.NewStandardClient())

	valid := signPayment("secret_test", "order_1", "pay_1")

	assert.True(t, client.VerifySignature("order_1", "pay_1", valid))
	assert.False(t, client.VerifySignature("order_1", "pay_1", "deadbeef"))
	assert.False(t, client.VerifySignature("order_2", "pay_1", valid))
	assert.False(t, client.VerifySignature("order_1", "pay_1", signPayment("other_secret", "order_1", "pay_1")))
}
