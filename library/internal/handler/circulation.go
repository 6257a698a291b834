package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/auth"
)

// BorrowBook checks out one copy of a book to the acting user.
//
//	@Summary	Borrow a book copy
//	@Tags		circulation
//	@Param		bookId	path	int	true	"book id"
//	@Success	201	{object}	model.Transaction
//	@Failure	404	{object}	echo.HTTPError
//	@Failure	409	{object}	echo.HTTPError
//	@Router		/books/{bookId}/borrow [post]
func (h *Handler) BorrowBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bookId is invalid")
	}
	id, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no identity")
	}

	trx, err := h.circulationSvc.Borrow(c.Request().Context(), id.UserID, bookID)
	if err != nil {
		return circulationError(err)
	}
	return c.JSON(http.StatusCreated, trx)
}

// ReturnBook completes the acting user's active loan of a book.
//
//	@Summary	Return a borrowed book copy
//	@Tags		circulation
//	@Param		bookId	path	int	true	"book id"
//	@Success	200	{object}	model.Transaction
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/books/{bookId}/return [post]
func (h *Handler) ReturnBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bookId is invalid")
	}
	id, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no identity")
	}

	trx, err := h.circulationSvc.Return(c.Request().Context(), id.UserID, bookID)
	if err != nil {
		return circulationError(err)
	}
	return c.JSON(http.StatusOK, trx)
}

func (h *Handler) GetTransactions(c echo.Context) error {
	var f model.TransactionFilter
	if v := c.QueryParam("userId"); v != "" {
		userID, err := parseInt64(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "userId is invalid")
		}
		f.UserID = userID
	}
	if v := c.QueryParam("bookId"); v != "" {
		bookID, err := parseInt64(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "bookId is invalid")
		}
		f.BookID = bookID
	}
	if v := c.QueryParam("status"); v != "" {
		f.Status = model.TransactionStatus(v)
	}

	items, err := h.circulationSvc.Transactions(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetOverdueTransactions(c echo.Context) error {
	items, err := h.circulationSvc.OverdueTransactions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTransaction(c echo.Context) error {
	uid := c.Param("transactionUid")
	trx, err := h.circulationSvc.Transaction(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, trx)
}

func circulationError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrBookNotFound),
		errors.Is(err, errs.ErrNoActiveLoan):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInventoryExhausted),
		errors.Is(err, errs.ErrDuplicateActiveLoan):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
