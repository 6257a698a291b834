package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

// CreateBook ingests a new catalog entry; all copies start available.
//
//	@Summary	Add a book to the catalog
//	@Tags		books
//	@Param		book	body	model.CreateBookRequest	true	"book"
//	@Success	201	{object}	model.Book
//	@Router		/books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.bookSvc.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateISBN) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bookId is invalid")
	}

	book, err := h.bookSvc.Get(c.Request().Context(), bookID)
	if err != nil {
		if errors.Is(err, errs.ErrBookNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) GetBooks(c echo.Context) error {
	var (
		err error
		f   model.BookFilter
	)
	f.Category = c.QueryParam("category")
	f.Keyword = c.QueryParam("q")
	if v := c.QueryParam("availableOnly"); v != "" {
		if f.AvailableOnly, err = strconv.ParseBool(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "availableOnly is invalid")
		}
	}
	if v := c.QueryParam("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil || f.Page < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if v := c.QueryParam("size"); v != "" {
		if f.Size, err = strconv.Atoi(v); err != nil || f.Size < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}

	books, err := h.bookSvc.List(c.Request().Context(), f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetCategories(c echo.Context) error {
	categories, err := h.bookSvc.Categories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bookId is invalid")
	}

	if err := h.bookSvc.Delete(c.Request().Context(), bookID); err != nil {
		if errors.Is(err, errs.ErrBookNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, errs.ErrBookInUse) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func parseInt64(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}
