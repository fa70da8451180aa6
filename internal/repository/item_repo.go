package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, id int64, input *domain.UpdateItemInput) error
	// GetForUpdate locks the item row for the remainder of the
	// transaction. Fulfillment and closure take this lock so that
	// read-decide-write sequences on the same item serialize.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Item, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id, qty int64) error
}

type itemRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewItemRepository(pool *pgxpool.Pool, logger *zap.Logger) ItemRepository {
	return &itemRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("item_repository"),
	}
}

const itemColumns = `id, sku, ean, name, uom, unit_price, stock, created_at, updated_at`

func scanItem(row pgx.Row, item *domain.Item) error {
	return row.Scan(
		&item.ID,
		&item.SKU,
		&item.EAN,
		&item.Name,
		&item.UOM,
		&item.UnitPrice,
		&item.Stock,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}

func (r *itemRepo) Create(ctx context.Context, item *domain.Item) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("sku", item.SKU),
	)

	query := `
		INSERT INTO items (sku, ean, name, uom, unit_price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		item.SKU,
		item.EAN,
		item.Name,
		item.UOM,
		item.UnitPrice,
		item.Stock,
	).Scan(&item.ID)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return 0, ErrSKUExists
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating item",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating item: %w", err)
	}

	return item.ID, nil
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	var item domain.Item
	if err := scanItem(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error getting item",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting item: %w", err)
	}

	return &item, nil
}

func (r *itemRepo) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.GetBySKU")
	defer span.End()

	span.SetAttributes(
		attribute.String("sku", sku),
	)

	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1`

	var item domain.Item
	if err := scanItem(r.pool.QueryRow(ctx, query, sku), &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting item by sku: %w", err)
	}

	return &item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]domain.Item, error) {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.List")
	defer span.End()

	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error listing items",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.SKU,
			&item.EAN,
			&item.Name,
			&item.UOM,
			&item.UnitPrice,
			&item.Stock,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning rows: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *itemRepo) Update(ctx context.Context, id int64, input *domain.UpdateItemInput) error {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `UPDATE items SET `
	var args []interface{}
	argId := 1

	var updates []string

	if input.EAN != nil {
		updates = append(updates, fmt.Sprintf("ean = $%d", argId))
		args = append(args, *input.EAN)
		argId++
	}

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.UOM != nil {
		updates = append(updates, fmt.Sprintf("uom = $%d", argId))
		args = append(args, *input.UOM)
		argId++
	}

	if input.UnitPrice != nil {
		updates = append(updates, fmt.Sprintf("unit_price = $%d", argId))
		args = append(args, *input.UnitPrice)
		argId++
	}

	if input.Stock != nil {
		updates = append(updates, fmt.Sprintf("stock = $%d", argId))
		args = append(args, *input.Stock)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")

	query += strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d", argId)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update item",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating item: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Item, error) {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`

	var item domain.Item
	if err := scanItem(tx.QueryRow(ctx, query, id), &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to lock item",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to lock item: %w", err)
	}

	return &item, nil
}

func (r *itemRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id, qty int64) error {
	ctx, span := r.tracer.Start(ctx, "ItemRepository.DecrementStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int64("qty", qty),
	)

	query := `
		UPDATE items
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	commandTag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error decrementing stock",
			zap.Int64("id", id),
			zap.Int64("qty", qty),
			zap.Error(err),
		)

		return fmt.Errorf("error decrementing stock for item %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrStockDepleted
	}

	return nil
}
