package repository

import (
	"context"
	"fmt"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartRepository interface {
	GetByCustomer(ctx context.Context, customerID int64) ([]domain.CartItem, error)
	Add(ctx context.Context, item *domain.CartItem) error
	UpdateQty(ctx context.Context, customerID, cartItemID, qty int64) error
	Delete(ctx context.Context, customerID, cartItemID int64) error
	Clear(ctx context.Context, customerID int64) error
}

type cartRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewCartRepository(pool *pgxpool.Pool, logger *zap.Logger) CartRepository {
	return &cartRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("cart_repository"),
	}
}

func (r *cartRepo) GetByCustomer(ctx context.Context, customerID int64) ([]domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.GetByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	query := `
		SELECT id, customer_id, item_id, qty, created_at
		FROM cart_items
		WHERE customer_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query cart items",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var ci domain.CartItem
		if err := rows.Scan(&ci.ID, &ci.CustomerID, &ci.ItemID, &ci.Qty, &ci.CreatedAt); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, ci)
	}

	return items, rows.Err()
}

func (r *cartRepo) Add(ctx context.Context, item *domain.CartItem) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Add")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", item.CustomerID),
		attribute.Int64("item_id", item.ItemID),
	)

	// Adding the same item twice accumulates quantity.
	query := `
		INSERT INTO cart_items (customer_id, item_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, item_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty
		RETURNING id, created_at
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		item.CustomerID,
		item.ItemID,
		item.Qty,
	).Scan(&item.ID, &item.CreatedAt); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to add cart item",
			zap.Int64("customer_id", item.CustomerID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

func (r *cartRepo) UpdateQty(ctx context.Context, customerID, cartItemID, qty int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.UpdateQty")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("cart_item_id", cartItemID),
		attribute.Int64("qty", qty),
	)

	query := `
		UPDATE cart_items
		SET qty = $1
		WHERE id = $2 AND customer_id = $3
	`

	commandTag, err := r.pool.Exec(ctx, query, qty, cartItemID, customerID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *cartRepo) Delete(ctx context.Context, customerID, cartItemID int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("cart_item_id", cartItemID),
	)

	query := `
		DELETE FROM cart_items
		WHERE id = $1 AND customer_id = $2
	`

	commandTag, err := r.pool.Exec(ctx, query, cartItemID, customerID)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *cartRepo) Clear(ctx context.Context, customerID int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Clear")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to clear cart",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
