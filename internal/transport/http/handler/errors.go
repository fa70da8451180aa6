package handler

import (
	"errors"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// fail maps the service error taxonomy to a status code and a stable
// discriminant; internals never cross this boundary.
func fail(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := "internal"
	msg := "internal error"

	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrLineNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrCartItemNotFound):
		code, kind, msg = fiber.StatusNotFound, "not_found", err.Error()

	case errors.Is(err, domain.ErrInvalidFilledQty),
		errors.Is(err, domain.ErrInvalidQty):
		code, kind, msg = fiber.StatusBadRequest, "validation", err.Error()

	case errors.Is(err, domain.ErrEmptyCart):
		code, kind, msg = fiber.StatusBadRequest, "empty_cart", err.Error()

	case errors.Is(err, domain.ErrStateConflict),
		errors.Is(err, domain.ErrOrderNotFulfilled):
		code, kind, msg = fiber.StatusConflict, "state_conflict", err.Error()

	case errors.Is(err, domain.ErrInsufficientStock):
		code, kind, msg = fiber.StatusConflict, "insufficient_stock", err.Error()

	case errors.Is(err, repository.ErrSKUExists):
		code, kind, msg = fiber.StatusConflict, "sku_exists", err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"error": msg,
		"code":  kind,
	})
}
