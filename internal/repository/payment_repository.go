package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/algospace/algospace-api/internal/models"
	apperrors "github.com/algospace/algospace-api/pkg/errors"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const orderColumns = `id, user_id, plan_id, gateway_order_id, amount_paise, currency, status,
	payment_id, created_at, updated_at`

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a PostgreSQL-backed payment repository
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func scanOrder(row pgx.Row) (*models.PaymentOrder, error) {
	var o models.PaymentOrder
	var paymentID *string

	err := row.Scan(
		&o.ID, &o.UserID, &o.PlanID, &o.GatewayOrderID, &o.AmountPaise, &o.Currency,
		&o.Status, &paymentID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentID != nil {
		o.PaymentID = *paymentID
	}
	return &o, nil
}

// CreateOrder persists a freshly created gateway order
func (r *paymentRepository) CreateOrder(ctx context.Context, order *models.PaymentOrder) (*models.PaymentOrder, error) {
	start := time.Now()
	operation := "createPaymentOrder"

	query := `
		INSERT INTO payment_orders (user_id, plan_id, gateway_order_id, amount_paise, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	created, err := scanOrder(r.pool.QueryRow(ctx, query,
		order.UserID, order.PlanID, order.GatewayOrderID, order.AmountPaise,
		order.Currency, models.PaymentOrderCreated,
	))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("order_id", created.ID),
		zap.String("gateway_order_id", created.GatewayOrderID))
	return created, nil
}

func (r *paymentRepository) GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	start := time.Now()
	operation := "getPaymentOrder"

	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE gateway_order_id = $1`, gatewayOrderID))
	duration := metrics.MeasureDuration(start)

	if err == pgx.ErrNoRows {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("payment order not found")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch payment order: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return order, nil
}

func (r *paymentRepository) setStatus(ctx context.Context, operation, id string, status models.PaymentOrderStatus, paymentID *string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_orders SET status = $1, payment_id = COALESCE($2, payment_id), updated_at = NOW() WHERE id = $3`,
		status, paymentID, id)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update payment order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("payment order not found")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id, paymentID string) error {
	return r.setStatus(ctx, "markPaymentPaid", id, models.PaymentOrderPaid, &paymentID)
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id string) error {
	return r.setStatus(ctx, "markPaymentFailed", id, models.PaymentOrderFailed, nil)
}

func (r *paymentRepository) ListOrdersByUser(ctx context.Context, userID string) ([]*models.PaymentOrder, error) {
	start := time.Now()
	operation := "listPaymentOrders"

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query payment orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.PaymentOrder, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			return nil, fmt.Errorf("failed to scan payment order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("error iterating payment order rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	return orders, nil
}
