package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-checkout/checkout/internal/model"
)

// CreateBook
// @Summary Register a book owned by the caller
// @Tags books
// @Accept json
// @Produce json
// @Param X-User-Id header string true "caller id"
// @Param book body model.CreateBookRequest true "book"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} echo.HTTPError
// @Router /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req model.CreateBookRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return err
	}
	req.OwnerID = userID

	bookID, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: bookID})
}

// GetBook
// @Summary Get a book with its active checkout
// @Tags books
// @Produce json
// @Param bookId path string true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Router /books/{bookId} [get]
func (h *Handler) GetBook(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), bookID)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// ListBooks
// @Summary List books
// @Tags books
// @Produce json
// @Param page query int false "page"
// @Param size query int false "page size"
// @Success 200 {object} model.ListBooks
// @Failure 400 {object} echo.HTTPError
// @Router /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	size, err := intQuery(c, "size")
	if err != nil {
		return err
	}
	books, err := h.catalogSvc.ListBooks(c.Request().Context(), page, size)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// UpdateBook
// @Summary Update a book owned by the caller
// @Tags books
// @Accept json
// @Param X-User-Id header string true "caller id"
// @Param bookId path string true "book id"
// @Param book body model.UpdateBookRequest true "book"
// @Success 204
// @Failure 400 {object} echo.HTTPError
// @Failure 404 {object} echo.HTTPError
// @Router /books/{bookId} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req model.UpdateBookRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return err
	}
	if err = h.catalogSvc.UpdateBook(c.Request().Context(), bookID, userID, req); err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteBook removes a book owned by the caller. Books on loan or with
// returned loans are kept.
// @Summary Delete a book owned by the caller
// @Tags books
// @Param X-User-Id header string true "caller id"
// @Param bookId path string true "book id"
// @Success 204
// @Failure 404 {object} echo.HTTPError
// @Failure 409 {object} echo.HTTPError
// @Router /books/{bookId} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	bookID, err := uuidParam(c, "bookId")
	if err != nil {
		return err
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if err = h.catalogSvc.DeleteBook(c.Request().Context(), bookID, userID); err != nil {
		return h.httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.CreateUserRequest true "user"
// @Success 201 {object} model.CreatedResponse
// @Router /users [post]
func (h *Handler) CreateUser(c echo.Context) error {
	var req model.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	userID, err := h.catalogSvc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, model.CreatedResponse{ID: userID})
}

// GetUser
// @Summary Get a user
// @Tags users
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} model.User
// @Failure 404 {object} echo.HTTPError
// @Router /users/{userId} [get]
func (h *Handler) GetUser(c echo.Context) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.catalogSvc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
