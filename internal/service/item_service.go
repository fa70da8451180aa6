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

type ItemService interface {
	Create(ctx context.Context, item *domain.Item) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, id int64, input *domain.UpdateItemInput) error
	ReservedStock(ctx context.Context, itemID int64) (int64, error)
	AvailableStock(ctx context.Context, itemID int64) (int64, error)
}

type itemService struct {
	logger   *zap.Logger
	itemRepo repository.ItemRepository
	lineRepo repository.LineRepository
	tracer   trace.Tracer
}

func NewItemService(logger *zap.Logger, itemRepo repository.ItemRepository, lineRepo repository.LineRepository) ItemService {
	return &itemService{
		logger:   logger,
		itemRepo: itemRepo,
		lineRepo: lineRepo,
		tracer:   otel.Tracer("item_service"),
	}
}

func (s *itemService) Create(ctx context.Context, item *domain.Item) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("sku", item.SKU),
	)

	return s.itemRepo.Create(ctx, item)
}

func (s *itemService) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.annotateAvailability(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *itemService) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.GetBySKU")
	defer span.End()

	span.SetAttributes(
		attribute.String("sku", sku),
	)

	item, err := s.itemRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if err := s.annotateAvailability(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *itemService) List(ctx context.Context) ([]domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.List")
	defer span.End()

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if err := s.annotateAvailability(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (s *itemService) Update(ctx context.Context, id int64, input *domain.UpdateItemInput) error {
	ctx, span := s.tracer.Start(ctx, "ItemService.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	return s.itemRepo.Update(ctx, id, input)
}

func (s *itemService) ReservedStock(ctx context.Context, itemID int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.ReservedStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("item_id", itemID),
	)

	// Existence check keeps unknown ids a not-found, not a zero.
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return 0, err
	}

	return s.lineRepo.ReservedStockRead(ctx, itemID)
}

func (s *itemService) AvailableStock(ctx context.Context, itemID int64) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.AvailableStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("item_id", itemID),
	)

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return 0, err
	}

	reserved, err := s.lineRepo.ReservedStockRead(ctx, itemID)
	if err != nil {
		return 0, err
	}

	return item.Stock - reserved, nil
}

func (s *itemService) annotateAvailability(ctx context.Context, item *domain.Item) error {
	reserved, err := s.lineRepo.ReservedStockRead(ctx, item.ID)
	if err != nil {
		return err
	}

	item.Available = item.Stock - reserved
	return nil
}
