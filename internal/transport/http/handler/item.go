package handler

import (
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/service"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ItemHandler struct {
	items  service.ItemService
	logger *zap.Logger
}

func NewItemHandler(items service.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

type createItemInput struct {
	SKU       string `json:"sku"`
	EAN       int64  `json:"ean"`
	Name      string `json:"name"`
	UOM       string `json:"uom"`
	UnitPrice int64  `json:"unit_price"`
	Stock     int64  `json:"stock"`
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	input := new(createItemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if input.SKU == "" || input.Name == "" || input.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed input", "code": "validation"})
	}

	item := &domain.Item{
		SKU:       input.SKU,
		EAN:       input.EAN,
		Name:      input.Name,
		UOM:       input.UOM,
		UnitPrice: input.UnitPrice,
		Stock:     input.Stock,
	}

	id, err := h.items.Create(c.UserContext(), item)
	if err != nil {
		mylogger.Warn(
			c.UserContext(),
			h.logger,
			"create item failed",
			zap.String("sku", input.SKU),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *ItemHandler) List(c *fiber.Ctx) error {
	items, err := h.items.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(items)
}

func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	item, err := h.items.GetByID(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(item)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	input := new(domain.UpdateItemInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	if err := h.items.Update(c.UserContext(), int64(id), input); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ItemHandler) Availability(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	reserved, err := h.items.ReservedStock(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	available, err := h.items.AvailableStock(c.UserContext(), int64(id))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"item_id":   int64(id),
		"reserved":  reserved,
		"available": available,
	})
}
