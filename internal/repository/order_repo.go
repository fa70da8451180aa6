package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error)
	GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*domain.Order, error)
	ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", order.CustomerID),
		attribute.Int("lines_count", len(order.Lines)),
	)

	queryOrder := `
		INSERT INTO orders (customer_id, status, address, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.CustomerID,
		string(order.Status),
		order.Address,
	).Scan(
		&order.ID,
		&order.CreatedAt,
	); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	queryLine := `
		INSERT INTO order_lines (order_id, item_id, qty, filled_qty)
		VALUES ($1, $2, $3, 0)
		RETURNING id
	`

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		line.FilledQty = 0

		if err := tx.QueryRow(
			ctx,
			queryLine,
			order.ID,
			line.ItemID,
			line.Qty,
		).Scan(&line.ID); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert order line",
				zap.Int64("item_id", line.ItemID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetOrderByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	query := `
		SELECT id, customer_id, status, address, created_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.Address,
		&order.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.linesByOrder(ctx, r.pool, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func (r *orderRepo) GetOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetOrderForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	query := `
		SELECT id, customer_id, status, address, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var order domain.Order
	if err := tx.QueryRow(ctx, query, orderID).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.Address,
		&order.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to lock order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	lines, err := r.linesByOrder(ctx, tx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func (r *orderRepo) ChangeOrderStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
	`

	commandTag, err := tx.Exec(ctx, query, string(status), orderID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(
			ctx,
			r.logger,
			"Order not found",
			zap.Int64("order_id", orderID),
		)

		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListAll")
	defer span.End()

	return r.list(ctx, `
		SELECT id, customer_id, status, address, created_at
		FROM orders
		ORDER BY created_at DESC, id ASC
	`)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	return r.list(ctx, `
		SELECT id, customer_id, status, address, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id ASC
	`, customerID)
}

func (r *orderRepo) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	byID := make(map[int64]int)
	var ids []int64

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.Address, &o.CreatedAt); err != nil {
			mylogger.Error(
				ctx,
				r.logger,
				"Failed to scan order row",
				zap.Error(err),
			)

			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		byID[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT id, order_id, item_id, qty, filled_qty
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l domain.Line
		if err := lineRows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Qty, &l.FilledQty); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}

		idx := byID[l.OrderID]
		orders[idx].Lines = append(orders[idx].Lines, l)
	}

	return orders, lineRows.Err()
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so line loads
// can run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepo) linesByOrder(ctx context.Context, q querier, orderID int64) ([]domain.Line, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, item_id, qty, filled_qty
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Qty, &l.FilledQty); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}
