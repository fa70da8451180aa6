package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	outboxDomain "github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CartProvider supplies the pending line items an order is created
// from. Satisfied by CartService; kept as a port so order creation
// never depends on how the cart is stored.
type CartProvider interface {
	GetCartItems(ctx context.Context, customerID int64) ([]domain.CartItem, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, customerID int64, address string) (*domain.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	FillLine(ctx context.Context, lineID, newFilledQty int64) (*domain.Line, error)
	SetOrderStatus(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	orderRepo  repository.OrderRepository
	lineRepo   repository.LineRepository
	itemRepo   repository.ItemRepository
	outboxRepo worker.OutboxRepository
	carts      CartProvider
	topic      string
	tracer     trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	lineRepo repository.LineRepository,
	itemRepo repository.ItemRepository,
	outboxRepo worker.OutboxRepository,
	carts CartProvider,
	topic string,
) OrderService {
	return &orderService{
		pool:       pool,
		logger:     logger,
		orderRepo:  orderRepo,
		lineRepo:   lineRepo,
		itemRepo:   itemRepo,
		outboxRepo: outboxRepo,
		carts:      carts,
		topic:      topic,
		tracer:     otel.Tracer("order_service"),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, customerID int64, address string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	cartItems, err := s.carts.GetCartItems(ctx, customerID)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to read cart",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	if len(cartItems) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		CustomerID: customerID,
		Status:     domain.OrderStatusPlaced,
		Address:    address,
	}
	for _, ci := range cartItems {
		order.Lines = append(order.Lines, domain.Line{
			ItemID: ci.ItemID,
			Qty:    ci.Qty,
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	placed := domain.OrderPlacedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
	}
	for _, l := range order.Lines {
		placed.Lines = append(placed.Lines, domain.OrderLineEvent{ItemID: l.ItemID, Qty: l.Qty})
	}

	if err := s.emitEvent(ctx, tx, order.ID, "OrderPlaced", placed); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll")
	defer span.End()

	return s.orderRepo.ListAll(ctx)
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListByCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	return s.orderRepo.ListByCustomer(ctx, customerID)
}

// FillLine records a new cumulative fill for a line. The item row is
// locked for the whole read-decide-write sequence, so two concurrent
// fills against the same item serialize and cannot jointly over-reserve.
// Lock order is line, order, item; closure takes order then items, so
// the acquisition order is consistent across both paths.
func (s *orderService) FillLine(ctx context.Context, lineID, newFilledQty int64) (*domain.Line, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FillLine")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("line_id", lineID),
		attribute.Int64("new_filled_qty", newFilledQty),
	)

	if newFilledQty < 0 {
		return nil, domain.ErrInvalidFilledQty
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	line, err := s.lineRepo.GetLineForUpdate(ctx, tx, lineID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, line.OrderID)
	if err != nil {
		return nil, err
	}

	// Lines of cancelled or closed orders are frozen.
	if order.Status != domain.OrderStatusPlaced && order.Status != domain.OrderStatusProcessing {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrStateConflict, order.Status)
	}

	if err := line.ValidateFill(newFilledQty); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetForUpdate(ctx, tx, line.ItemID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.lineRepo.ReservedStock(ctx, tx, line.ItemID)
	if err != nil {
		return nil, err
	}

	// available already excludes this line's prior reservation (it is
	// part of the sum when the order is processing), so comparing the
	// increase against it is exactly the never-oversell rule.
	available := item.Stock - reserved
	delta := newFilledQty - line.FilledQty
	if delta > available {
		mylogger.Warn(
			ctx,
			s.logger,
			"Fill rejected, insufficient stock",
			zap.Int64("line_id", lineID),
			zap.Int64("delta", delta),
			zap.Int64("available", available),
		)

		return nil, domain.ErrInsufficientStock
	}

	if err := s.lineRepo.UpdateFilledQty(ctx, tx, lineID, newFilledQty); err != nil {
		return nil, err
	}

	// First allocation moves the order out of the unworked state.
	if order.Status == domain.OrderStatusPlaced {
		if err := s.orderRepo.ChangeOrderStatus(ctx, tx, order.ID, domain.OrderStatusProcessing); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	line.FilledQty = newFilledQty
	return line, nil
}

func (s *orderService) SetOrderStatus(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.SetOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("target", string(target)),
	)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrStateConflict, order.Status, target)
	}

	switch target {
	case domain.OrderStatusCancelled:
		if err := s.emitEvent(ctx, tx, order.ID, "OrderCancelled", domain.OrderCancelledEvent{OrderID: order.ID}); err != nil {
			return nil, err
		}

	case domain.OrderStatusClosed:
		if !order.FullyFulfilled() {
			return nil, fmt.Errorf("%w: order %d", domain.ErrOrderNotFulfilled, order.ID)
		}

		if err := s.commitStock(ctx, tx, order); err != nil {
			return nil, err
		}

	case domain.OrderStatusProcessing:
		// Explicit placed -> processing, same move the first fill makes.
	}

	if err := s.orderRepo.ChangeOrderStatus(ctx, tx, order.ID, target); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.Status = target
	return order, nil
}

// commitStock converts the order's reservations into permanent stock
// deductions. Items are locked in ascending id order to avoid
// deadlocks with concurrent fills and closures.
func (s *orderService) commitStock(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	lines := make([]domain.Line, len(order.Lines))
	copy(lines, order.Lines)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })

	closed := domain.OrderClosedEvent{OrderID: order.ID}

	for _, l := range lines {
		if _, err := s.itemRepo.GetForUpdate(ctx, tx, l.ItemID); err != nil {
			return err
		}

		if err := s.itemRepo.DecrementStock(ctx, tx, l.ItemID, l.Qty); err != nil {
			mylogger.Error(
				ctx,
				s.logger,
				"Failed to commit stock deduction",
				zap.Int64("order_id", order.ID),
				zap.Int64("item_id", l.ItemID),
				zap.Error(err),
			)

			return err
		}

		closed.Deductions = append(closed.Deductions, domain.OrderLineEvent{ItemID: l.ItemID, Qty: l.Qty})
	}

	return s.emitEvent(ctx, tx, order.ID, "OrderClosed", closed)
}

func (s *orderService) emitEvent(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, payload any) error {
	wrapper := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	wrapperBytes, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal event wrapper: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		AggregateID:   fmt.Sprintf("%d", orderID),
		EventType:     eventType,
		Payload:       wrapperBytes,
		Topic:         s.topic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to save outbox event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)

		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

func (s *orderService) rollback(ctx context.Context, tx pgx.Tx) {
	shutdownCtx := context.WithoutCancel(ctx)

	if err := tx.Rollback(shutdownCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		mylogger.Warn(
			shutdownCtx,
			s.logger,
			"Error rolling back transaction",
			zap.Error(err),
		)
	}
}
