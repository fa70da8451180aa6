package handler

import (
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/service"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/mylogger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	carts  service.CartService
	logger *zap.Logger
}

func NewOrderHandler(orders service.OrderService, carts service.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts, logger: logger}
}

type createOrderInput struct {
	Address string `json:"address"`
}

type fillLineInput struct {
	FilledQty int64 `json:"filled_qty"`
}

type setStatusInput struct {
	Status string `json:"status"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	input := new(createOrderInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}

	order, err := h.orders.CreateOrder(c.UserContext(), customerID, input.Address)
	if err != nil {
		mylogger.Warn(
			c.UserContext(),
			h.logger,
			"create order failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)

		return fail(c, err)
	}

	// Snapshot taken; the pending cart is now the caller's to discard.
	if err := h.carts.ClearCart(c.UserContext(), customerID); err != nil {
		mylogger.Warn(
			c.UserContext(),
			h.logger,
			"cart clear after order creation failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	customerID, ok := c.Locals("customerID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "customerID parsing error"})
	}
	isEmployee, _ := c.Locals("isEmployee").(bool)

	var (
		orders []domain.Order
		err    error
	)
	if isEmployee {
		orders, err = h.orders.ListAll(c.UserContext())
	} else {
		orders, err = h.orders.ListByCustomer(c.UserContext(), customerID)
	}
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(orders)
}

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	customerID, _ := c.Locals("customerID").(int64)
	isEmployee, _ := c.Locals("isEmployee").(bool)

	order, err := h.orders.GetOrderByID(c.UserContext(), int64(orderID))
	if err != nil {
		return fail(c, err)
	}

	if !isEmployee && order.CustomerID != customerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "you are not authorized to view this order"})
	}

	return c.JSON(order)
}

func (h *OrderHandler) FillLine(c *fiber.Ctx) error {
	lineID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid line id"})
	}

	input := new(fillLineInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	line, err := h.orders.FillLine(c.UserContext(), int64(lineID), input.FilledQty)
	if err != nil {
		mylogger.Warn(
			c.UserContext(),
			h.logger,
			"fill line failed",
			zap.Int("line_id", lineID),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(line)
}

func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	input := new(setStatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "error parsing body"})
	}

	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": "validation"})
	}

	order, err := h.orders.SetOrderStatus(c.UserContext(), int64(orderID), target)
	if err != nil {
		mylogger.Warn(
			c.UserContext(),
			h.logger,
			"set order status failed",
			zap.Int("order_id", orderID),
			zap.String("target", input.Status),
			zap.Error(err),
		)

		return fail(c, err)
	}

	return c.JSON(order)
}
