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

type LineRepository interface {
	GetLineForUpdate(ctx context.Context, tx pgx.Tx, lineID int64) (*domain.Line, error)
	UpdateFilledQty(ctx context.Context, tx pgx.Tx, lineID, filledQty int64) error
	// ReservedStock sums filled_qty over lines whose parent order is
	// processing. Placed lines are not yet reserved, closed lines are
	// already deducted, cancelled lines are void.
	ReservedStock(ctx context.Context, tx pgx.Tx, itemID int64) (int64, error)
	ReservedStockRead(ctx context.Context, itemID int64) (int64, error)
}

type lineRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewLineRepository(pool *pgxpool.Pool, logger *zap.Logger) LineRepository {
	return &lineRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("line_repository"),
	}
}

func (r *lineRepo) GetLineForUpdate(ctx context.Context, tx pgx.Tx, lineID int64) (*domain.Line, error) {
	ctx, span := r.tracer.Start(ctx, "LineRepository.GetLineForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("line_id", lineID),
	)

	query := `
		SELECT id, order_id, item_id, qty, filled_qty
		FROM order_lines
		WHERE id = $1
		FOR UPDATE
	`

	var line domain.Line
	if err := tx.QueryRow(ctx, query, lineID).Scan(
		&line.ID,
		&line.OrderID,
		&line.ItemID,
		&line.Qty,
		&line.FilledQty,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to lock order line",
			zap.Int64("line_id", lineID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to lock order line: %w", err)
	}

	return &line, nil
}

func (r *lineRepo) UpdateFilledQty(ctx context.Context, tx pgx.Tx, lineID, filledQty int64) error {
	ctx, span := r.tracer.Start(ctx, "LineRepository.UpdateFilledQty")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("line_id", lineID),
		attribute.Int64("filled_qty", filledQty),
	)

	query := `
		UPDATE order_lines
		SET filled_qty = $1
		WHERE id = $2
	`

	commandTag, err := tx.Exec(ctx, query, filledQty, lineID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update filled quantity",
			zap.Int64("line_id", lineID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update filled quantity: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrLineNotFound
	}

	return nil
}

const reservedStockQuery = `
	SELECT COALESCE(SUM(l.filled_qty), 0)
	FROM order_lines l
	JOIN orders o ON o.id = l.order_id
	WHERE l.item_id = $1 AND o.status = 'processing'
`

func (r *lineRepo) ReservedStock(ctx context.Context, tx pgx.Tx, itemID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "LineRepository.ReservedStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("item_id", itemID),
	)

	var reserved int64
	if err := tx.QueryRow(ctx, reservedStockQuery, itemID).Scan(&reserved); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum reserved stock: %w", err)
	}

	return reserved, nil
}

func (r *lineRepo) ReservedStockRead(ctx context.Context, itemID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "LineRepository.ReservedStockRead")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("item_id", itemID),
	)

	var reserved int64
	if err := r.pool.QueryRow(ctx, reservedStockQuery, itemID).Scan(&reserved); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum reserved stock: %w", err)
	}

	return reserved, nil
}
