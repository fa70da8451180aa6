package service

import (
	"context"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartService interface {
	CartProvider
	AddCartItem(ctx context.Context, item *domain.CartItem) error
	UpdateCartItem(ctx context.Context, customerID, cartItemID, qty int64) error
	DeleteCartItem(ctx context.Context, customerID, cartItemID int64) error
	ClearCart(ctx context.Context, customerID int64) error
}

type cartService struct {
	logger   *zap.Logger
	cartRepo repository.CartRepository
	itemRepo repository.ItemRepository
	tracer   trace.Tracer
}

func NewCartService(logger *zap.Logger, cartRepo repository.CartRepository, itemRepo repository.ItemRepository) CartService {
	return &cartService{
		logger:   logger,
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		tracer:   otel.Tracer("cart_service"),
	}
}

func (s *cartService) GetCartItems(ctx context.Context, customerID int64) ([]domain.CartItem, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCartItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	return s.cartRepo.GetByCustomer(ctx, customerID)
}

func (s *cartService) AddCartItem(ctx context.Context, item *domain.CartItem) error {
	ctx, span := s.tracer.Start(ctx, "CartService.AddCartItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", item.CustomerID),
		attribute.Int64("item_id", item.ItemID),
	)

	if item.Qty <= 0 {
		return domain.ErrInvalidQty
	}

	// Referenced item must exist before it can sit in a cart.
	if _, err := s.itemRepo.GetByID(ctx, item.ItemID); err != nil {
		return err
	}

	return s.cartRepo.Add(ctx, item)
}

func (s *cartService) UpdateCartItem(ctx context.Context, customerID, cartItemID, qty int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateCartItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("cart_item_id", cartItemID),
	)

	if qty <= 0 {
		return domain.ErrInvalidQty
	}

	return s.cartRepo.UpdateQty(ctx, customerID, cartItemID, qty)
}

func (s *cartService) DeleteCartItem(ctx context.Context, customerID, cartItemID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.DeleteCartItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("cart_item_id", cartItemID),
	)

	return s.cartRepo.Delete(ctx, customerID, cartItemID)
}

func (s *cartService) ClearCart(ctx context.Context, customerID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer_id", customerID),
	)

	return s.cartRepo.Clear(ctx, customerID)
}
