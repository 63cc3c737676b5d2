package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

// CreateCheckout
// @Summary Check out a book
// @Tags checkouts
// @Produce json
// @Param X-User-Id header string true "caller id"
// @Param bookId path string true "book id"
// @Success 201 {object} model.CreateCheckoutResponse
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Failure 422 {object} echo.HTTPError
// @Router /books/{bookId}/checkouts [post]
func (h *Handler) CreateCheckout(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var checkoutID uuid.UUID
	err = h.withRetry(c.Request().Context(), func(ctx context.Context) (err error) {
		checkoutID, err = h.checkoutSvc.CreateCheckout(ctx, bookID, userID)
		return err
	})
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, model.CreateCheckoutResponse{CheckoutID: checkoutID})
}

// ReturnCheckout
// @Summary Return a checked out book
// @Tags checkouts
// @Param X-User-Id header string true "caller id"
// @Param bookId path string true "book id"
// @Param checkoutId path string true "checkout id"
// @Success 201
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Failure 422 {object} echo.HTTPError
// @Router /books/{bookId}/checkouts/{checkoutId}/returned [put]
func (h *Handler) ReturnCheckout(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	checkoutID, err := uuidParam(c, "checkoutId")
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	err = h.withRetry(c.Request().Context(), func(ctx context.Context) error {
		return h.checkoutSvc.ReturnCheckout(ctx, bookID, checkoutID, userID)
	})
	if err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// ListUnreturned
// @Summary List unreturned checkouts, oldest first
// @Tags checkouts
// @Produce json
// @Success 200 {object} model.Checkouts
// @Router /books/checkouts [get]
func (h *Handler) ListUnreturned(c echo.Context) error {
	checkouts, err := h.checkoutSvc.ListUnreturned(c.Request().Context())
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, checkouts)
}

// ListMyUnreturned
// @Summary List unreturned checkouts of the caller
// @Tags checkouts
// @Produce json
// @Param X-User-Id header string true "caller id"
// @Success 200 {object} model.Checkouts
// @Failure 401 {object} echo.HTTPError
// @Router /books/checkouts/me [get]
func (h *Handler) ListMyUnreturned(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	checkouts, err := h.checkoutSvc.ListUnreturnedByUser(c.Request().Context(), userID)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, checkouts)
}

// History
// @Summary Checkout history of a book, active checkout first
// @Tags checkouts
// @Produce json
// @Param bookId path string true "book id"
// @Success 200 {object} model.Checkouts
// @Failure 404 {object} echo.HTTPError
// @Router /books/{bookId}/checkout-history [get]
func (h *Handler) History(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	checkouts, err := h.checkoutSvc.History(c.Request().Context(), bookID)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, checkouts)
}
