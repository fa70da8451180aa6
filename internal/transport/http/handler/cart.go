package handler

import (
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

type cartItemInput struct {
	ItemID int64 `json:"item_id"`
	Qty    int64 `json:"qty"`
}

func (h *CartHandler) List(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	items, err := h.carts.GetCartItems(c.UserContext(), customerID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(items)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	input := new(cartItemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	item := &domain.CartItem{
		CustomerID: customerID,
		ItemID:     input.ItemID,
		Qty:        input.Qty,
	}

	if err := h.carts.AddCartItem(c.UserContext(), item); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cart item id"})
	}

	input := new(cartItemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.carts.UpdateCartItem(c.UserContext(), customerID, int64(id), input.Qty); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) Delete(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid cart item id"})
	}

	if err := h.carts.DeleteCartItem(c.UserContext(), customerID, int64(id)); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	if err := h.carts.ClearCart(c.UserContext(), customerID); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
