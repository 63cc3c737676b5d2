package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-checkout/checkout/internal/errs"
	_ "github.com/Astemirdum/library-checkout/checkout/swagger"
	md "github.com/Astemirdum/library-checkout/pkg/middleware"
	"github.com/Astemirdum/library-checkout/pkg/retry"
	"github.com/Astemirdum/library-checkout/pkg/validate"
)

type Handler struct {
	checkoutSvc CheckoutService
	catalogSvc  CatalogService
	retryOpts   []retry.Option
	log         *zap.Logger
}

// New builds the API handler. retryOpts tune how create and return calls are
// repeated after a retryable transaction failure.
func New(checkoutSvc CheckoutService, catalogSvc CatalogService, log *zap.Logger, retryOpts ...retry.Option) *Handler {
	return &Handler{
		checkoutSvc: checkoutSvc,
		catalogSvc:  catalogSvc,
		retryOpts:   retryOpts,
		log:         log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, md.XUserIDHeader},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books/checkouts", h.ListUnreturned)
	api.GET("/books/checkouts/me", h.ListMyUnreturned, md.AuthContext)
	api.POST("/books/:bookId/checkouts", h.CreateCheckout, md.AuthContext)
	api.PUT("/books/:bookId/checkouts/:checkoutId/returned", h.ReturnCheckout, md.AuthContext)
	api.GET("/books/:bookId/checkout-history", h.History)

	api.POST("/books", h.CreateBook, md.AuthContext)
	api.GET("/books", h.ListBooks)
	api.GET("/books/:bookId", h.GetBook)
	api.PUT("/books/:bookId", h.UpdateBook, md.AuthContext)
	api.DELETE("/books/:bookId", h.DeleteBook, md.AuthContext)

	api.POST("/users", h.CreateUser)
	api.GET("/users/:userId", h.GetUser)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// withRetry repeats fn while it fails with a retryable transaction failure.
func (h *Handler) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, fn, errs.IsRetryable, h.retryOpts...)
}

func (h *Handler) httpError(c echo.Context, err error) error {
	status := errs.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return echo.NewHTTPError(status, err.Error())
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return id, nil
}

func callerID(c echo.Context) (uuid.UUID, error) {
	userID, ok := md.GetUserID(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, errs.ErrUserID.Error())
	}
	return userID, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	param := c.QueryParam(name)
	if param == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(param)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return v, nil
}
