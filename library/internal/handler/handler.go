package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/bibliotek/circulation/docs"
	md "github.com/bibliotek/circulation/pkg/middleware"
	"github.com/bibliotek/circulation/pkg/validate"
)

type Handler struct {
	circulationSvc CirculationService
	bookSvc        BookService
	userSvc        UserService
	analyticsSvc   AnalyticsService
	log            *zap.Logger
}

func New(circulationSvc CirculationService, bookSvc BookService, userSvc UserService, analyticsSvc AnalyticsService, log *zap.Logger) *Handler {
	return &Handler{
		circulationSvc: circulationSvc,
		bookSvc:        bookSvc,
		userSvc:        userSvc,
		analyticsSvc:   analyticsSvc,
		log:            log,
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
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/books", h.CreateBook)
	api.GET("/books", h.GetBooks)
	api.GET("/books/categories", h.GetCategories)
	api.GET("/books/:bookId", h.GetBook)
	api.DELETE("/books/:bookId", h.DeleteBook)

	api.POST("/books/:bookId/borrow", h.BorrowBook, md.IdentityContext)
	api.POST("/books/:bookId/return", h.ReturnBook, md.IdentityContext)

	api.GET("/transactions", h.GetTransactions)
	api.GET("/transactions/overdue", h.GetOverdueTransactions)
	api.GET("/transactions/:transactionUid", h.GetTransaction)

	api.POST("/users", h.RegisterUser)
	api.GET("/users", h.GetUsers)
	api.GET("/users/:userId", h.GetUser)

	api.GET("/analytics/dashboard", h.GetDashboard)
	api.GET("/analytics/activity", h.GetActivity)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
