package service_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
)

func (s *IntegrationTestSuite) TestFillLine_ReservesStock() {
	itemID := s.seedItem("SKU-100", 10)
	order := s.placeOrder(42, itemID, 4)

	line, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 4)
	s.Require().NoError(err)
	s.Require().Equal(int64(4), line.FilledQty)

	// First fill moves the order into processing.
	got, err := s.OrderService.GetOrderByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusProcessing, got.Status)

	reserved, err := s.ItemService.ReservedStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(4), reserved)

	available, err := s.ItemService.AvailableStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(6), available)
}

func (s *IntegrationTestSuite) TestFillLine_NeverOversells() {
	itemID := s.seedItem("SKU-101", 10)

	first := s.placeOrder(42, itemID, 4)
	second := s.placeOrder(43, itemID, 7)

	_, err := s.OrderService.FillLine(s.Ctx, first.Lines[0].ID, 4)
	s.Require().NoError(err)

	// Only 6 remain unreserved, so filling 7 must be refused.
	_, err = s.OrderService.FillLine(s.Ctx, second.Lines[0].ID, 7)
	s.Require().ErrorIs(err, domain.ErrInsufficientStock)

	_, err = s.OrderService.FillLine(s.Ctx, second.Lines[0].ID, 6)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestFillLine_IdempotentRefill() {
	itemID := s.seedItem("SKU-102", 10)
	order := s.placeOrder(42, itemID, 4)

	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 4)
	s.Require().NoError(err)

	// Repeating the same target quantity is a no-op delta and must succeed
	// even when the rest of the stock is spoken for.
	other := s.placeOrder(43, itemID, 6)
	_, err = s.OrderService.FillLine(s.Ctx, other.Lines[0].ID, 6)
	s.Require().NoError(err)

	line, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 4)
	s.Require().NoError(err)
	s.Require().Equal(int64(4), line.FilledQty)
}

func (s *IntegrationTestSuite) TestFillLine_DecrementReleasesReservation() {
	itemID := s.seedItem("SKU-103", 10)
	order := s.placeOrder(42, itemID, 6)

	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 6)
	s.Require().NoError(err)

	_, err = s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 2)
	s.Require().NoError(err)

	available, err := s.ItemService.AvailableStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(8), available)
}

func (s *IntegrationTestSuite) TestFillLine_Validation() {
	itemID := s.seedItem("SKU-104", 10)
	order := s.placeOrder(42, itemID, 4)
	lineID := order.Lines[0].ID

	_, err := s.OrderService.FillLine(s.Ctx, lineID, -1)
	s.Require().ErrorIs(err, domain.ErrInvalidFilledQty)

	_, err = s.OrderService.FillLine(s.Ctx, lineID, 5)
	s.Require().ErrorIs(err, domain.ErrInvalidFilledQty)

	_, err = s.OrderService.FillLine(s.Ctx, 999999, 1)
	s.Require().Error(err)
}

func (s *IntegrationTestSuite) TestFillLine_RejectedOnCancelledOrder() {
	itemID := s.seedItem("SKU-105", 10)
	order := s.placeOrder(42, itemID, 4)

	_, err := s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusCancelled)
	s.Require().NoError(err)

	_, err = s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 1)
	s.Require().ErrorIs(err, domain.ErrStateConflict)
}

func (s *IntegrationTestSuite) TestFillLine_ConcurrentContention() {
	itemID := s.seedItem("SKU-106", 10)

	orders := make([]*domain.Order, 4)
	for i := range orders {
		orders[i] = s.placeOrder(int64(100+i), itemID, 4)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(orders))

	for i, order := range orders {
		wg.Add(1)
		go func(i int, lineID int64) {
			defer wg.Done()
			_, errs[i] = s.OrderService.FillLine(s.Ctx, lineID, 4)
		}(i, order.Lines[0].ID)
	}
	wg.Wait()

	var filled int
	for _, err := range errs {
		if err == nil {
			filled++
		} else {
			s.Require().ErrorIs(err, domain.ErrInsufficientStock)
		}
	}
	// 10 units cover at most two fills of 4. Whichever orders won, the
	// total reserved never exceeds stock.
	s.Require().Equal(2, filled)

	reserved, err := s.ItemService.ReservedStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(8), reserved)
}

func (s *IntegrationTestSuite) TestCloseOrder_CommitsStock() {
	itemID := s.seedItem("SKU-110", 10)
	order := s.placeOrder(42, itemID, 4)

	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 4)
	s.Require().NoError(err)

	closed, err := s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusClosed)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusClosed, closed.Status)

	item, err := s.ItemService.GetByID(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(6), item.Stock)

	reserved, err := s.ItemService.ReservedStock(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(0), reserved)

	s.assertEventPublished(order.ID, "OrderClosed")
}

func (s *IntegrationTestSuite) TestCloseOrder_RejectedWhenIncomplete() {
	itemID := s.seedItem("SKU-111", 10)
	order := s.placeOrder(42, itemID, 4)

	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 3)
	s.Require().NoError(err)

	_, err = s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusClosed)
	s.Require().ErrorIs(err, domain.ErrOrderNotFulfilled)

	// Stock is untouched by the failed attempt.
	item, err := s.ItemService.GetByID(s.Ctx, itemID)
	s.Require().NoError(err)
	s.Require().Equal(int64(10), item.Stock)
}

func (s *IntegrationTestSuite) TestCancelOrder() {
	itemID := s.seedItem("SKU-112", 10)
	order := s.placeOrder(42, itemID, 4)

	cancelled, err := s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusCancelled)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, cancelled.Status)

	s.assertEventPublished(order.ID, "OrderCancelled")
}

func (s *IntegrationTestSuite) TestCancelOrder_RejectedOnceProcessing() {
	itemID := s.seedItem("SKU-113", 10)
	order := s.placeOrder(42, itemID, 4)

	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 1)
	s.Require().NoError(err)

	_, err = s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusCancelled)
	s.Require().ErrorIs(err, domain.ErrStateConflict)
}

func (s *IntegrationTestSuite) TestSetOrderStatus_RejectsNonsenseTransitions() {
	itemID := s.seedItem("SKU-114", 10)
	order := s.placeOrder(42, itemID, 4)

	// placed -> closed skips fulfillment entirely.
	_, err := s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusClosed)
	s.Require().ErrorIs(err, domain.ErrStateConflict)

	_, err = s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusCancelled)
	s.Require().NoError(err)

	// Cancelled is terminal.
	_, err = s.OrderService.SetOrderStatus(s.Ctx, order.ID, domain.OrderStatusProcessing)
	s.Require().ErrorIs(err, domain.ErrStateConflict)
}

func (s *IntegrationTestSuite) assertEventPublished(orderID int64, eventType string) {
	s.T().Helper()

	s.Require().Eventually(func() bool {
		var publishedAt *time.Time

		err := s.DbPool.QueryRow(s.Ctx, `
			SELECT published_at FROM outbox WHERE aggregate_id = $1 AND event_type = $2
		`, fmt.Sprintf("%d", orderID), eventType).Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}
