package service_test

import (
	"context"
	"testing"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/service"
	kafka2 "github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/kafka"
	outboxRepository "github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/repository"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/outbox/worker"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/testsuite"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	OrderService    service.OrderService
	ItemService     service.ItemService
	CartService     service.CartService
	TestProducer    kafka2.Producer
	OutboxProcessor *worker.OutboxProcessor
	workerCancel    context.CancelFunc
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("cart_items")
	s.BaseSuite.TruncateTable("order_lines")
	s.BaseSuite.TruncateTable("orders")
	s.BaseSuite.TruncateTable("items")
	s.BaseSuite.TruncateTable("outbox")

	logger := zap.NewNop()
	orderRepo := repository.NewOrderRepository(s.DbPool, logger)
	lineRepo := repository.NewLineRepository(s.DbPool, logger)
	itemRepo := repository.NewItemRepository(s.DbPool, logger)
	cartRepo := repository.NewCartRepository(s.DbPool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	var err error
	s.TestProducer, err = kafka2.NewProducer(s.KafkaBrokers)
	s.Require().NoError(err, "failed to create kafka producer")

	s.CartService = service.NewCartService(logger, cartRepo, itemRepo)
	s.ItemService = service.NewItemService(logger, itemRepo, lineRepo)
	s.OrderService = service.NewOrderService(
		s.DbPool, logger, orderRepo, lineRepo, itemRepo, outboxRepo, s.CartService, "order_events",
	)

	s.OutboxProcessor = worker.NewOutboxProcessor(s.DbPool, outboxRepo, s.TestProducer, logger)

	workerCtx, cancel := context.WithCancel(s.Ctx)
	s.workerCancel = cancel

	go s.OutboxProcessor.Start(workerCtx)
}

func (s *IntegrationTestSuite) TearDownTest() {
	if s.workerCancel != nil {
		s.workerCancel()
	}
}

func (s *IntegrationTestSuite) seedItem(sku string, stock int64) int64 {
	id, err := s.ItemService.Create(s.Ctx, &domain.Item{
		SKU:       sku,
		EAN:       4006381333931,
		Name:      "Test item " + sku,
		UOM:       "pcs",
		UnitPrice: 1250,
		Stock:     stock,
	})
	s.Require().NoError(err)

	return id
}

func (s *IntegrationTestSuite) seedCart(customerID, itemID, qty int64) {
	err := s.CartService.AddCartItem(s.Ctx, &domain.CartItem{
		CustomerID: customerID,
		ItemID:     itemID,
		Qty:        qty,
	})
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) placeOrder(customerID, itemID, qty int64) *domain.Order {
	s.seedCart(customerID, itemID, qty)

	order, err := s.OrderService.CreateOrder(s.Ctx, customerID, "1 Warehouse Way")
	s.Require().NoError(err)
	s.Require().NotNil(order)

	err = s.CartService.ClearCart(s.Ctx, customerID)
	s.Require().NoError(err)

	return order
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
