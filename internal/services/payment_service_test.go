package services_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/algospace/algospace-api/pkg/razorpay"
)

func newPaymentService(paymentRepo *MockPaymentRepository, userRepo *MockUserRepository, httpClient *MockHTTPClient) *services.PaymentService {
	cfg := testConfig()
	gateway := razorpay.NewClient(cfg.Payment.GatewayBaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret, httpClient)
	return services.NewPaymentService(paymentRepo, userRepo, gateway, cfg)
}

func gatewaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCreateOrder_UnknownPlan(t *testing.T) {
	svc := newPaymentService(new(MockPaymentRepository), new(MockUserRepository), new(MockHTTPClient))

	_, err := svc.CreateOrder(context.Background(), "12345678-user", &models.CreateOrderRequest{PlanID: "platinum"})

	assert.ErrorIs(t, err, services.ErrUnknownPlan)
}

func TestCreateOrder_CandidatesOnly(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newPaymentService(new(MockPaymentRepository), userRepo, new(MockHTTPClient))

	userRepo.On("GetUserByID", mock.Anything, "12345678-int").Return(&models.User{
		ID:   "12345678-int",
		Role: models.RoleInterviewer,
	}, nil)

	_, err := svc.CreateOrder(context.Background(), "12345678-int", &models.CreateOrderRequest{PlanID: "basic"})

	assert.ErrorIs(t, err, services.ErrNotCandidate)
}

func TestCreateOrder_Success(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	userRepo := new(MockUserRepository)
	httpClient := new(MockHTTPClient)
	svc := newPaymentService(paymentRepo, userRepo, httpClient)

	userRepo.On("GetUserByID", mock.Anything, "12345678-cand").Return(&models.User{
		ID:   "12345678-cand",
		Role: models.RoleCandidate,
	}, nil)
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).
		Return(jsonResponse(http.StatusOK, `{"id":"order_N1","amount":49900,"currency":"INR","status":"created"}`), nil)
	paymentRepo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *models.PaymentOrder) bool {
		return o.GatewayOrderID == "order_N1" &&
			o.PlanID == "premium" &&
			o.Status == models.PaymentOrderCreated &&
			o.AmountPaise == 49900
	})).Return(&models.PaymentOrder{ID: "po-1"}, nil)

	resp, err := svc.CreateOrder(context.Background(), "12345678-cand", &models.CreateOrderRequest{PlanID: "premium"})

	require.NoError(t, err)
	assert.Equal(t, "order_N1", resp.OrderID)
	assert.Equal(t, int64(49900), resp.AmountPaise)
	assert.Equal(t, "key_test", resp.KeyID)
	paymentRepo.AssertExpectations(t)
}

func TestCreateOrder_ShortUserID(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	userRepo := new(MockUserRepository)
	httpClient := new(MockHTTPClient)
	svc := newPaymentService(paymentRepo, userRepo, httpClient)

	userRepo.On("GetUserByID", mock.Anything, "u1").Return(&models.User{
		ID:   "u1",
		Role: models.RoleCandidate,
	}, nil)
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).
		Return(jsonResponse(http.StatusOK, `{"id":"order_N2","amount":19900,"currency":"INR","status":"created"}`), nil)
	paymentRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.PaymentOrder")).
		Return(&models.PaymentOrder{ID: "po-2"}, nil)

	resp, err := svc.CreateOrder(context.Background(), "u1", &models.CreateOrderRequest{PlanID: "basic"})

	require.NoError(t, err)
	assert.Equal(t, "order_N2", resp.OrderID)
}

func TestVerifyPayment_Success(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	userRepo := new(MockUserRepository)
	svc := newPaymentService(paymentRepo, userRepo, new(MockHTTPClient))

	created := &models.PaymentOrder{
		ID:             "po-1",
		UserID:         "cand-1",
		PlanID:         "basic",
		GatewayOrderID: "order_N1",
		Status:         models.PaymentOrderCreated,
	}
	paid := &models.PaymentOrder{
		ID:             "po-1",
		UserID:         "cand-1",
		PlanID:         "basic",
		GatewayOrderID: "order_N1",
		Status:         models.PaymentOrderPaid,
		PaymentID:      "pay_1",
	}

	paymentRepo.On("GetOrderByGatewayID", mock.Anything, "order_N1").Return(created, nil).Once()
	paymentRepo.On("MarkPaid", mock.Anything, "po-1", "pay_1").Return(nil)
	userRepo.On("SetPlan", mock.Anything, "cand-1", "basic").Return(nil)
	paymentRepo.On("GetOrderByGatewayID", mock.Anything, "order_N1").Return(paid, nil).Once()

	order, err := svc.VerifyPayment(context.Background(), "cand-1", &models.VerifyPaymentRequest{
		OrderID:   "order_N1",
		PaymentID: "pay_1",
		Signature: gatewaySignature("secret_test", "order_N1", "pay_1"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentOrderPaid, order.Status)
	paymentRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(paymentRepo, new(MockUserRepository), new(MockHTTPClient))

	paymentRepo.On("GetOrderByGatewayID", mock.Anything, "order_N1").Return(&models.PaymentOrder{
		ID:             "po-1",
		UserID:         "cand-1",
		GatewayOrderID: "order_N1",
		Status:         models.PaymentOrderCreated,
	}, nil)
	paymentRepo.On("MarkFailed", mock.Anything, "po-1").Return(nil)

	_, err := svc.VerifyPayment(context.Background(), "cand-1", &models.VerifyPaymentRequest{
		OrderID:   "order_N1",
		PaymentID: "pay_1",
		Signature: "forged",
	})

	assert.ErrorIs(t, err, services.ErrSignatureMismatch)
	paymentRepo.AssertCalled(t, "MarkFailed", mock.Anything, "po-1")
	paymentRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_WrongUser(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(paymentRepo, new(MockUserRepository), new(MockHTTPClient))

	paymentRepo.On("GetOrderByGatewayID", mock.Anything, "order_N1").Return(&models.PaymentOrder{
		ID:     "po-1",
		UserID: "cand-1",
		Status: models.PaymentOrderCreated,
	}, nil)

	_, err := svc.VerifyPayment(context.Background(), "cand-2", &models.VerifyPaymentRequest{
		OrderID:   "order_N1",
		PaymentID: "pay_1",
		Signature: "x",
	})

	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestVerifyPayment_AlreadySettled(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	svc := newPaymentService(paymentRepo, new(MockUserRepository), new(MockHTTPClient))

	paymentRepo.On("GetOrderByGatewayID", mock.Anything, "order_N1").Return(&models.PaymentOrder{
		ID:     "po-1",
		UserID: "cand-1",
		Status: models.PaymentOrderPaid,
	}, nil)

	_, err := svc.VerifyPayment(context.Background(), "cand-1", &models.VerifyPaymentRequest{
		OrderID:   "order_N1",
		PaymentID: "pay_1",
		Signature: "x",
	})

	assert.ErrorIs(t, err, services.ErrOrderAlreadySettled)
}
