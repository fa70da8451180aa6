package service_test

import (
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
)

func (s *IntegrationTestSuite) TestItem_CreateAndGet() {
	id := s.seedItem("SKU-200", 25)

	item, err := s.ItemService.GetByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("SKU-200", item.SKU)
	s.Require().Equal(int64(25), item.Stock)
	s.Require().Equal(int64(25), item.Available)

	bySKU, err := s.ItemService.GetBySKU(s.Ctx, "SKU-200")
	s.Require().NoError(err)
	s.Require().Equal(id, bySKU.ID)

	_, err = s.ItemService.GetByID(s.Ctx, 999999)
	s.Require().ErrorIs(err, repository.ErrItemNotFound)
}

func (s *IntegrationTestSuite) TestItem_DuplicateSKU() {
	s.seedItem("SKU-201", 5)

	_, err := s.ItemService.Create(s.Ctx, &domain.Item{
		SKU:   "SKU-201",
		Name:  "duplicate",
		UOM:   "pcs",
		Stock: 1,
	})
	s.Require().ErrorIs(err, repository.ErrSKUExists)
}

func (s *IntegrationTestSuite) TestItem_Update() {
	id := s.seedItem("SKU-202", 5)

	name := "renamed"
	price := int64(1299)
	err := s.ItemService.Update(s.Ctx, id, &domain.UpdateItemInput{
		Name:      &name,
		UnitPrice: &price,
	})
	s.Require().NoError(err)

	item, err := s.ItemService.GetByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("renamed", item.Name)
	s.Require().Equal(int64(1299), item.UnitPrice)
	// Untouched fields survive a partial update.
	s.Require().Equal("SKU-202", item.SKU)

	err = s.ItemService.Update(s.Ctx, 999999, &domain.UpdateItemInput{Name: &name})
	s.Require().ErrorIs(err, repository.ErrItemNotFound)
}

func (s *IntegrationTestSuite) TestItem_ListAnnotatesAvailability() {
	first := s.seedItem("SKU-203", 10)
	s.seedItem("SKU-204", 3)

	order := s.placeOrder(42, first, 4)
	_, err := s.OrderService.FillLine(s.Ctx, order.Lines[0].ID, 4)
	s.Require().NoError(err)

	items, err := s.ItemService.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)

	byID := make(map[int64]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	s.Require().Equal(int64(6), byID[first].Available)
}

func (s *IntegrationTestSuite) TestItem_ReservedStockUnknownItem() {
	_, err := s.ItemService.ReservedStock(s.Ctx, 999999)
	s.Require().ErrorIs(err, repository.ErrItemNotFound)
}

func (s *IntegrationTestSuite) TestCart_AddAccumulates() {
	itemID := s.seedItem("SKU-210", 10)

	s.seedCart(42, itemID, 2)
	s.seedCart(42, itemID, 3)

	items, err := s.CartService.GetCartItems(s.Ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().Equal(int64(5), items[0].Qty)
}

func (s *IntegrationTestSuite) TestCart_Validation() {
	itemID := s.seedItem("SKU-211", 10)

	err := s.CartService.AddCartItem(s.Ctx, &domain.CartItem{
		CustomerID: 42,
		ItemID:     itemID,
		Qty:        0,
	})
	s.Require().ErrorIs(err, domain.ErrInvalidQty)

	err = s.CartService.AddCartItem(s.Ctx, &domain.CartItem{
		CustomerID: 42,
		ItemID:     999999,
		Qty:        1,
	})
	s.Require().ErrorIs(err, repository.ErrItemNotFound)
}

func (s *IntegrationTestSuite) TestCart_UpdateAndDelete() {
	itemID := s.seedItem("SKU-212", 10)
	s.seedCart(42, itemID, 2)

	items, err := s.CartService.GetCartItems(s.Ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	cartItemID := items[0].ID

	err = s.CartService.UpdateCartItem(s.Ctx, 42, cartItemID, 7)
	s.Require().NoError(err)

	items, err = s.CartService.GetCartItems(s.Ctx, 42)
	s.Require().NoError(err)
	s.Require().Equal(int64(7), items[0].Qty)

	// Another customer's cart is out of reach.
	err = s.CartService.UpdateCartItem(s.Ctx, 43, cartItemID, 1)
	s.Require().ErrorIs(err, repository.ErrCartItemNotFound)

	err = s.CartService.DeleteCartItem(s.Ctx, 42, cartItemID)
	s.Require().NoError(err)

	items, err = s.CartService.GetCartItems(s.Ctx, 42)
	s.Require().NoError(err)
	s.Require().Empty(items)
}
