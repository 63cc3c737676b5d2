package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	"github.com/Astemirdum/library-checkout/checkout/internal/handler"
	"github.com/Astemirdum/library-checkout/checkout/internal/model"
	md "github.com/Astemirdum/library-checkout/pkg/middleware"
	"github.com/Astemirdum/library-checkout/pkg/retry"

	service_mocks "github.com/Astemirdum/library-checkout/checkout/internal/handler/mocks"
)

var (
	bookID     = uuid.MustParse("5b1b1d2a-47a1-4c5e-9d7e-3f0c6f4f7b10")
	userID     = uuid.MustParse("0f5d5d43-8b61-4b8e-a9a8-6a3b9f3f2c01")
	checkoutID = uuid.MustParse("c9d4a8f1-2e0b-4a44-8f6c-1d2b3c4d5e6f")

	checkedOutAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

type request struct {
	method string
	target string
	userID string
	body   string
}

type response struct {
	expectedCode int
	expectedBody string
}

type mockBehavior func(checkouts *service_mocks.MockCheckoutService, catalog *service_mocks.MockCatalogService)

type testCase struct {
	name         string
	mockBehavior mockBehavior
	request      request
	response     response
}

func run(t *testing.T, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			checkouts := service_mocks.NewMockCheckoutService(c)
			catalog := service_mocks.NewMockCatalogService(c)
			h := handler.New(checkouts, catalog, zap.NewNop(),
				retry.WithMaxAttempts(2),
				retry.WithBaseDelay(time.Millisecond),
			)
			e := h.NewRouter()

			body := http.NoBody
			r := httptest.NewRequest(tt.request.method, tt.request.target, body)
			if tt.request.body != "" {
				r = httptest.NewRequest(tt.request.method, tt.request.target, strings.NewReader(tt.request.body))
			}
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.request.userID != "" {
				r.Header.Set(md.XUserIDHeader, tt.request.userID)
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(checkouts, catalog)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func noCalls(*service_mocks.MockCheckoutService, *service_mocks.MockCatalogService) {}

func TestHandler_CreateCheckout(t *testing.T) {
	t.Parallel()
	target := "/api/v1/books/" + bookID.String() + "/checkouts"
	serializationFailure := errs.Transaction(errors.New("could not serialize access"), true)

	run(t, []testCase{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(checkoutID, nil)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"checkoutId":"` + checkoutID.String() + `"}`,
			},
		},
		{
			name: "ok. retried after serialization failure",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				gomock.InOrder(
					r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(uuid.Nil, serializationFailure),
					r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(checkoutID, nil),
				)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"checkoutId":"` + checkoutID.String() + `"}`,
			},
		},
		{
			name: "err. retries exhausted",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(uuid.Nil, serializationFailure).Times(2)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"transaction failure: could not serialize access"}`,
			},
		},
		{
			name: "err. already checked out",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(uuid.Nil, errs.ErrAlreadyCheckedOut)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"conflict: book is already checked out"}`,
			},
		},
		{
			name: "err. book not found",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(uuid.Nil, errs.ErrBookNotFound)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name: "err. nothing inserted",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().CreateCheckout(gomock.Any(), bookID, userID).Return(uuid.Nil, errs.ErrCheckoutNotCreated)
			},
			request: request{method: http.MethodPost, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"message":"unprocessable state: no checkout record has been created"}`,
			},
		},
		{
			name:         "err. bad book id",
			mockBehavior: noCalls,
			request:      request{method: http.MethodPost, target: "/api/v1/books/42/checkouts", userID: userID.String()},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"bookId is invalid"}`,
			},
		},
		{
			name:         "err. no caller",
			mockBehavior: noCalls,
			request:      request{method: http.MethodPost, target: target},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"user id is required"}`,
			},
		},
	})
}

func TestHandler_ReturnCheckout(t *testing.T) {
	t.Parallel()
	target := "/api/v1/books/" + bookID.String() + "/checkouts/" + checkoutID.String() + "/returned"

	run(t, []testCase{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ReturnCheckout(gomock.Any(), bookID, checkoutID, userID).Return(nil)
			},
			request:  request{method: http.MethodPut, target: target, userID: userID.String()},
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name: "err. not the borrower",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ReturnCheckout(gomock.Any(), bookID, checkoutID, userID).Return(errs.ErrReturnMismatch)
			},
			request: request{method: http.MethodPut, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"conflict: checkout does not match the active loan"}`,
			},
		},
		{
			name: "err. already returned",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ReturnCheckout(gomock.Any(), bookID, checkoutID, userID).Return(errs.ErrAlreadyReturned)
			},
			request: request{method: http.MethodPut, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"conflict: checkout is already returned"}`,
			},
		},
		{
			name: "err. history row not inserted",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ReturnCheckout(gomock.Any(), bookID, checkoutID, userID).Return(errs.ErrReturnNotRecorded)
			},
			request: request{method: http.MethodPut, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"message":"unprocessable state: no returned checkout record has been created"}`,
			},
		},
		{
			name: "err. commit failed",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ReturnCheckout(gomock.Any(), bookID, checkoutID, userID).
					Return(errs.Transaction(errors.New("connection reset"), false))
			},
			request: request{method: http.MethodPut, target: target, userID: userID.String()},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"transaction failure: connection reset"}`,
			},
		},
		{
			name:         "err. bad checkout id",
			mockBehavior: noCalls,
			request: request{
				method: http.MethodPut,
				target: "/api/v1/books/" + bookID.String() + "/checkouts/c1/returned",
				userID: userID.String(),
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"checkoutId is invalid"}`,
			},
		},
	})
}

func TestHandler_Checkouts(t *testing.T) {
	t.Parallel()
	active := model.Checkout{
		ID:           checkoutID,
		CheckedOutBy: model.CheckoutUser{ID: userID, Name: "U2"},
		CheckedOutAt: checkedOutAt,
		Book: model.CheckoutBook{
			ID:     bookID,
			Title:  "Dune",
			Author: "Frank Herbert",
			Isbn:   "9780441013593",
		},
	}
	returnedAt := checkedOutAt.Add(48 * time.Hour)
	returned := active
	returned.ID = uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001")
	returned.ReturnedAt = &returnedAt

	activeJSON := `{"id":"` + checkoutID.String() + `","checkedOutBy":{"id":"` + userID.String() + `","name":"U2"},` +
		`"checkedOutAt":"2024-05-01T10:00:00Z","returnedAt":null,` +
		`"book":{"id":"` + bookID.String() + `","title":"Dune","author":"Frank Herbert","isbn":"9780441013593"}}`
	returnedJSON := `{"id":"a1b2c3d4-0000-4000-8000-000000000001","checkedOutBy":{"id":"` + userID.String() + `","name":"U2"},` +
		`"checkedOutAt":"2024-05-01T10:00:00Z","returnedAt":"2024-05-03T10:00:00Z",` +
		`"book":{"id":"` + bookID.String() + `","title":"Dune","author":"Frank Herbert","isbn":"9780441013593"}}`

	run(t, []testCase{
		{
			name: "ok. all unreturned",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ListUnreturned(gomock.Any()).Return(model.Checkouts{Items: []model.Checkout{active}}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/checkouts"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[` + activeJSON + `]}`,
			},
		},
		{
			name: "ok. mine",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ListUnreturnedByUser(gomock.Any(), userID).Return(model.Checkouts{Items: []model.Checkout{}}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/checkouts/me", userID: userID.String()},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[]}`,
			},
		},
		{
			name: "ok. history",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().History(gomock.Any(), bookID).
					Return(model.Checkouts{Items: []model.Checkout{active, returned}}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/" + bookID.String() + "/checkout-history"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[` + activeJSON + `,` + returnedJSON + `]}`,
			},
		},
		{
			name: "err. history of unknown book",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().History(gomock.Any(), bookID).Return(model.Checkouts{}, errs.ErrBookNotFound)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/" + bookID.String() + "/checkout-history"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name: "err. db internal",
			mockBehavior: func(r *service_mocks.MockCheckoutService, _ *service_mocks.MockCatalogService) {
				r.EXPECT().ListUnreturned(gomock.Any()).Return(model.Checkouts{}, errors.New("db internal"))
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/checkouts"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	})
}

func TestHandler_Catalog(t *testing.T) {
	t.Parallel()
	book := model.Book{
		ID:     bookID,
		Title:  "Dune",
		Author: "Frank Herbert",
		Isbn:   "9780441013593",
		Owner:  model.BookOwner{ID: userID, Name: "U1"},
	}
	bookJSON := `{"id":"` + bookID.String() + `","title":"Dune","author":"Frank Herbert","isbn":"9780441013593",` +
		`"description":"","owner":{"id":"` + userID.String() + `","name":"U1"},"checkout":null}`

	run(t, []testCase{
		{
			name: "ok. create book",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), model.CreateBookRequest{
					Title:   "Dune",
					Author:  "Frank Herbert",
					Isbn:    "9780441013593",
					OwnerID: userID,
				}).Return(bookID, nil)
			},
			request: request{
				method: http.MethodPost,
				target: "/api/v1/books",
				userID: userID.String(),
				body:   `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593"}`,
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":"` + bookID.String() + `"}`,
			},
		},
		{
			name:         "err. create book without title",
			mockBehavior: noCalls,
			request: request{
				method: http.MethodPost,
				target: "/api/v1/books",
				userID: userID.String(),
				body:   `{"author":"Frank Herbert","isbn":"9780441013593"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'CreateBookRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"}`,
			},
		},
		{
			name: "ok. get book",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().GetBook(gomock.Any(), bookID).Return(book, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books/" + bookID.String()},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: bookJSON,
			},
		},
		{
			name: "ok. list books",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().ListBooks(gomock.Any(), 1, 1).Return(model.ListBooks{
					Paging: model.Paging{Page: 1, PageSize: 1, TotalElements: 1},
					Items:  []model.Book{book},
				}, nil)
			},
			request: request{method: http.MethodGet, target: "/api/v1/books?page=1&size=1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":1,"totalElements":1,"items":[` + bookJSON + `]}`,
			},
		},
		{
			name:         "err. negative page",
			mockBehavior: noCalls,
			request:      request{method: http.MethodGet, target: "/api/v1/books?page=-1"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name: "ok. delete book",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookID, userID).Return(nil)
			},
			request:  request{method: http.MethodDelete, target: "/api/v1/books/" + bookID.String(), userID: userID.String()},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. delete checked out book",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookID, userID).Return(errs.ErrAlreadyCheckedOut)
			},
			request: request{method: http.MethodDelete, target: "/api/v1/books/" + bookID.String(), userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"conflict: book is already checked out"}`,
			},
		},
		{
			name: "err. delete book with history",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookID, userID).Return(errs.ErrBookHasHistory)
			},
			request: request{method: http.MethodDelete, target: "/api/v1/books/" + bookID.String(), userID: userID.String()},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"conflict: book has checkout history"}`,
			},
		},
		{
			name: "ok. update book",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().UpdateBook(gomock.Any(), bookID, userID, model.UpdateBookRequest{
					Title: "Dune", Author: "Herbert", Isbn: "978", Description: "2nd ed.",
				}).Return(nil)
			},
			request: request{
				method: http.MethodPut,
				target: "/api/v1/books/" + bookID.String(),
				userID: userID.String(),
				body:   `{"title":"Dune","author":"Herbert","isbn":"978","description":"2nd ed."}`,
			},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. update book not owned",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().UpdateBook(gomock.Any(), bookID, userID, gomock.Any()).Return(errs.ErrBookNotFound)
			},
			request: request{
				method: http.MethodPut,
				target: "/api/v1/books/" + bookID.String(),
				userID: userID.String(),
				body:   `{"title":"Dune","author":"Herbert","isbn":"978"}`,
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name:         "err. update book without title",
			mockBehavior: noCalls,
			request: request{
				method: http.MethodPut,
				target: "/api/v1/books/" + bookID.String(),
				userID: userID.String(),
				body:   `{"author":"Herbert","isbn":"978"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'UpdateBookRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"}`,
			},
		},
		{
			name:         "err. update book without caller",
			mockBehavior: noCalls,
			request: request{
				method: http.MethodPut,
				target: "/api/v1/books/" + bookID.String(),
				body:   `{"title":"Dune","author":"Herbert","isbn":"978"}`,
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"user id is required"}`,
			},
		},
		{
			name: "ok. create user",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateUser(gomock.Any(), model.CreateUserRequest{Name: "U1"}).Return(userID, nil)
			},
			request: request{method: http.MethodPost, target: "/api/v1/users", body: `{"name":"U1"}`},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":"` + userID.String() + `"}`,
			},
		},
		{
			name: "err. unknown user",
			mockBehavior: func(_ *service_mocks.MockCheckoutService, r *service_mocks.MockCatalogService) {
				r.EXPECT().GetUser(gomock.Any(), userID).Return(model.User{}, errs.ErrUserNotFound)
			},
			request: request{method: http.MethodGet, target: "/api/v1/users/" + userID.String()},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"user not found"}`,
			},
		},
		{
			name:         "ok. health",
			mockBehavior: noCalls,
			request:      request{method: http.MethodGet, target: "/manage/health"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: "OK",
			},
		},
	})
}

func TestHandler_Swagger(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h := handler.New(service_mocks.NewMockCheckoutService(c), service_mocks.NewMockCatalogService(c), zap.NewNop())
	e := h.NewRouter()

	r := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"/books/{bookId}/checkouts/{checkoutId}/returned"`)
	require.Contains(t, w.Body.String(), `"model.UpdateBookRequest"`)
}
