package http

import (
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/transport/http/handler"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/transport/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Order *handler.OrderHandler
	Item  *handler.ItemHandler
	Cart  *handler.CartHandler
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api", middleware.NewAuthMiddleware())

	orders := api.Group("/orders")
	orders.Post("", h.Order.Create)
	orders.Get("", h.Order.List)
	orders.Get("/:id", h.Order.GetByID)
	orders.Patch("/:id/status", middleware.NewEmployeeOnlyMiddleware(), h.Order.SetStatus)

	lines := api.Group("/lines", middleware.NewEmployeeOnlyMiddleware())
	lines.Patch("/:id/fill", h.Order.FillLine)

	items := api.Group("/items")
	items.Get("", h.Item.List)
	items.Get("/:id", h.Item.GetByID)
	items.Get("/:id/availability", h.Item.Availability)
	items.Post("", middleware.NewEmployeeOnlyMiddleware(), h.Item.Create)
	items.Patch("/:id", middleware.NewEmployeeOnlyMiddleware(), h.Item.Update)

	cart := api.Group("/cart")
	cart.Get("", h.Cart.List)
	cart.Post("", h.Cart.Add)
	cart.Patch("/:id", h.Cart.Update)
	cart.Delete("/:id", h.Cart.Delete)
	cart.Delete("", h.Cart.Clear)
}
