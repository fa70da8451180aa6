package service_test

import (
	"fmt"
	"time"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
)

func (s *IntegrationTestSuite) TestCreateOrder_Success() {
	itemID := s.seedItem("SKU-001", 10)

	order := s.placeOrder(42, itemID, 4)

	s.Require().Equal(domain.OrderStatusPlaced, order.Status)
	s.Require().Len(order.Lines, 1)
	s.Require().Equal(int64(4), order.Lines[0].Qty)
	s.Require().Equal(int64(0), order.Lines[0].FilledQty)

	// Placed orders reserve nothing yet.
	available, err := s.ItemService.AvailableStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(10), available)

	var outboxID int64
	err = s.DbPool.QueryRow(s.Ctx, `
		SELECT id FROM outbox WHERE aggregate_id = $1 AND event_type = 'OrderPlaced'
	`, fmt.Sprintf("%d", order.ID)).Scan(&outboxID)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		var publishedAt *time.Time

		err := s.DbPool.QueryRow(s.Ctx, `
			SELECT published_at FROM outbox WHERE id = $1
		`, outboxID).Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *IntegrationTestSuite) TestCreateOrder_MultipleLines() {
	first := s.seedItem("SKU-010", 5)
	second := s.seedItem("SKU-011", 8)

	s.seedCart(42, first, 2)
	s.seedCart(42, second, 3)

	order, err := s.OrderService.CreateOrder(s.Ctx, 42, "1 Warehouse Way")
	s.Require().NoError(err)
	s.Require().Len(order.Lines, 2)

	for _, line := range order.Lines {
		s.Require().Equal(order.ID, line.OrderID)
		s.Require().Equal(int64(0), line.FilledQty)
	}
}

func (s *IntegrationTestSuite) TestCreateOrder_EmptyCart() {
	_, err := s.OrderService.CreateOrder(s.Ctx, 42, "1 Warehouse Way")
	s.Require().ErrorIs(err, domain.ErrEmptyCart)
}

func (s *IntegrationTestSuite) TestListOrders_MostRecentFirst() {
	itemID := s.seedItem("SKU-020", 10)

	// Explicit timestamps so the ordering is deterministic.
	var older, newer int64
	err := s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO orders (customer_id, status, address, created_at)
		VALUES (42, 'placed', '', NOW() - INTERVAL '1 hour')
		RETURNING id
	`).Scan(&older)
	s.Require().NoError(err)

	err = s.DbPool.QueryRow(s.Ctx, `
		INSERT INTO orders (customer_id, status, address, created_at)
		VALUES (42, 'placed', '', NOW())
		RETURNING id
	`).Scan(&newer)
	s.Require().NoError(err)

	_, err = s.DbPool.Exec(s.Ctx, `
		INSERT INTO order_lines (order_id, item_id, qty, filled_qty)
		VALUES ($1, $3, 1, 0), ($2, $3, 1, 0)
	`, older, newer, itemID)
	s.Require().NoError(err)

	orders, err := s.OrderService.ListByCustomer(s.Ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(orders, 2)
	s.Require().Equal(newer, orders[0].ID)
	s.Require().Equal(older, orders[1].ID)
	s.Require().Len(orders[0].Lines, 1)

	all, err := s.OrderService.ListAll(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Require().Equal(newer, all[0].ID)
}

func (s *IntegrationTestSuite) TestGetOrderByID() {
	itemID := s.seedItem("SKU-030", 10)
	order := s.placeOrder(42, itemID, 4)

	got, err := s.OrderService.GetOrderByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, got.ID)
	s.Require().Equal(int64(42), got.CustomerID)
	s.Require().Len(got.Lines, 1)

	_, err = s.OrderService.GetOrderByID(s.Ctx, 999999)
	s.Require().Error(err)
}
