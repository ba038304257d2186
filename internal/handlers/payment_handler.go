package handlers

import (
	"errors"
	"net/http"

	"github.com/algospace/algospace-api/internal/middleware"
	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles plan checkout endpoints
type PaymentHandler struct {
	service services.PaymentServiceInterface
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service services.PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

// CreateOrder handles POST /api/v1/payment/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VerifyPayment handles POST /api/v1/payment/verify-payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	order, err := h.service.VerifyPayment(c.Request.Context(), session.UserID, &req)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/v1/payment/orders
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), session.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownPlan):
		respondError(c, http.StatusBadRequest, "Unknown plan", err)
	case errors.Is(err, services.ErrNotCandidate):
		respondError(c, http.StatusForbidden, "Candidate account required", err)
	case errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Payment order not found", err)
	case errors.Is(err, services.ErrSignatureMismatch):
		respondError(c, http.StatusBadRequest, "Payment signature verification failed", err)
	case errors.Is(err, services.ErrOrderAlreadySettled):
		respondError(c, http.StatusConflict, "Payment order already settled", err)
	case errors.Is(err, services.ErrGatewayUnavailable):
		respondError(c, http.StatusServiceUnavailable, "Payment gateway unavailable, try again later", err)
	default:
		respondServiceError(c, err)
	}
}
