package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tymelesstyre/storefront/internal/api/metrics"
	"github.com/tymelesstyre/storefront/internal/core/ports"
)

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Get handles GET /cart.
func (h *CartHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toCartResponse(h.service.Snapshot()))
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.service.AddItem(c.Request().Context(), toProduct(req), req.Quantity)
	return h.respond(c, "add_item", err)
}

// UpdateQuantity handles PATCH /cart/items/:product_id. A quantity of zero
// removes the line.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err := h.service.UpdateQuantity(c.Request().Context(), c.Param("product_id"), req.Quantity)
	return h.respond(c, "update_quantity", err)
}

// RemoveItem handles DELETE /cart/items/:product_id.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	err := h.service.RemoveItem(c.Request().Context(), c.Param("product_id"))
	return h.respond(c, "remove_item", err)
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(c echo.Context) error {
	err := h.service.ClearCart(c.Request().Context())
	return h.respond(c, "clear", err)
}

// ApplyVoucher handles POST /cart/voucher.
func (h *CartHandler) ApplyVoucher(c echo.Context) error {
	var req voucherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ok, err := h.service.ApplyVoucher(c.Request().Context(), req.Code)
	switch {
	case err != nil:
		metrics.VoucherAttemptsTotal.WithLabelValues("error").Inc()
		return err
	case !ok:
		metrics.VoucherAttemptsTotal.WithLabelValues("unknown").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid voucher code")
	}

	metrics.VoucherAttemptsTotal.WithLabelValues("applied").Inc()
	return h.Get(c)
}

// RemoveVoucher handles DELETE /cart/voucher.
func (h *CartHandler) RemoveVoucher(c echo.Context) error {
	if err := h.service.RemoveVoucher(c.Request().Context()); err != nil {
		return err
	}
	return h.Get(c)
}

func (h *CartHandler) respond(c echo.Context, op string, err error) error {
	metrics.CartMutationsTotal.WithLabelValues(op, metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	view := h.service.Snapshot()
	metrics.CartTotal.Set(view.Total.InexactFloat64())
	return c.JSON(http.StatusOK, toCartResponse(view))
}
