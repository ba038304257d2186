package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/algospace/algospace-api/config"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
	"github.com/algospace/algospace-api/pkg/circuitbreaker"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/algospace/algospace-api/pkg/razorpay"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrOrderNotFound       = errors.New("payment order not found")
	ErrSignatureMismatch   = errors.New("payment signature verification failed")
	ErrOrderAlreadySettled = errors.New("payment order already settled")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

// PaymentService creates gateway orders for plan purchases and verifies the
// post-checkout callback signature before activating the plan.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	gateway     *razorpay.Client
	breaker     *gobreaker.CircuitBreaker
	config      *config.Config
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	gateway *razorpay.Client,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		breaker:     circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("payment_gateway")),
		config:      cfg,
	}
}

// CreateOrder opens a gateway order for the chosen plan and persists it in
// the created state
func (s *PaymentService) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	plan, ok := models.Plans[req.PlanID]
	if !ok {
		return nil, ErrUnknownPlan
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleCandidate {
		return nil, ErrNotCandidate
	}

	receipt := fmt.Sprintf("plan_%s_%d", userID[:min(len(userID), 8)], time.Now().Unix())
	order, err := circuitbreaker.Execute(s.breaker, func() (*razorpay.Order, error) {
		return s.gateway.CreateOrder(ctx, plan.AmountPaise, plan.Currency, receipt)
	})
	if err != nil {
		logger.Error("Gateway order creation failed",
			zap.String("user_id", userID),
			zap.String("plan_id", plan.ID),
			zap.Error(err))
		if circuitbreaker.IsCircuitOpen(s.breaker) {
			return nil, ErrGatewayUnavailable
		}
		return nil, circuitbreaker.FormatError("payment_gateway", err)
	}

	if _, err := s.paymentRepo.CreateOrder(ctx, &models.PaymentOrder{
		UserID:         userID,
		PlanID:         plan.ID,
		GatewayOrderID: order.ID,
		AmountPaise:    plan.AmountPaise,
		Currency:       plan.Currency,
		Status:         models.PaymentOrderCreated,
	}); err != nil {
		return nil, err
	}

	logger.Info("Payment order created",
		zap.String("user_id", userID),
		zap.String("plan_id", plan.ID),
		zap.String("gateway_order_id", order.ID))

	return &models.CreateOrderResponse{
		OrderID:     order.ID,
		AmountPaise: plan.AmountPaise,
		Currency:    plan.Currency,
		KeyID:       s.config.Payment.KeyID,
		PlanID:      plan.ID,
	}, nil
}

// VerifyPayment checks the gateway callback signature. A valid signature
// marks the order paid and activates the plan; an invalid one marks the
// order failed.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, req *models.VerifyPaymentRequest) (*models.PaymentOrder, error) {
	order, err := s.paymentRepo.GetOrderByGatewayID(ctx, req.OrderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.PaymentOrderCreated {
		return nil, ErrOrderAlreadySettled
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		if err := s.paymentRepo.MarkFailed(ctx, order.ID); err != nil {
			logger.Error("Failed to mark order failed",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
		logger.Warn("Payment signature mismatch",
			zap.String("order_id", order.ID),
			zap.String("user_id", userID))
		metrics.PaymentOrders.WithLabelValues("verify", "signature_mismatch").Inc()
		return nil, ErrSignatureMismatch
	}

	if err := s.paymentRepo.MarkPaid(ctx, order.ID, req.PaymentID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetPlan(ctx, userID, order.PlanID); err != nil {
		// The order is paid; plan activation is retried on the next login
		// sync rather than failing the verification.
		logger.Error("Plan activation failed after payment",
			zap.String("order_id", order.ID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	logger.Info("Payment verified",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("plan_id", order.PlanID))
	metrics.PaymentOrders.WithLabelValues("verify", "success").Inc()

	return s.paymentRepo.GetOrderByGatewayID(ctx, req.OrderID)
}

// ListOrders returns the caller's payment history
func (s *PaymentService) ListOrders(ctx context.Context, userID string) ([]*models.PaymentOrder, error) {
	return s.paymentRepo.ListOrdersByUser(ctx, userID)
}
