package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/handler"
	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/auth"
	md "github.com/bibliotek/circulation/pkg/middleware"
	"github.com/bibliotek/circulation/pkg/validate"

	service_mocks "github.com/bibliotek/circulation/library/internal/handler/mocks"
)

var borrowedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func activeLoan() model.Transaction {
	return model.Transaction{
		ID:             1,
		TransactionUID: "8b7f9d4e-1f5a-4b6c-9e2d-3a8c5f7b1d42",
		UserID:         1,
		BookID:         10,
		Type:           model.TypeBorrow,
		Status:         model.StatusActive,
		BorrowedAt:     borrowedAt,
		DueDate:        borrowedAt.Add(14 * 24 * time.Hour),
		CreatedAt:      borrowedAt,
		UpdatedAt:      borrowedAt,
	}
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	type input struct {
		bookID   string
		identity bool
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCirculationService, req input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {
				r.EXPECT().
					Borrow(gomock.Any(), int64(1), int64(10)).
					Return(activeLoan(), nil)
			},
			input: input{bookID: "10", identity: true},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"transactionUid":"8b7f9d4e-1f5a-4b6c-9e2d-3a8c5f7b1d42","userId":1,"bookId":10,"type":"BORROW","status":"ACTIVE","borrowedAt":"2026-08-01T10:00:00Z","dueDate":"2026-08-15T10:00:00Z","returnedAt":null,"createdAt":"2026-08-01T10:00:00Z","updatedAt":"2026-08-01T10:00:00Z"}`,
			},
		},
		{
			name:         "err. invalid bookId",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {},
			input:        input{bookID: "abc", identity: true},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"bookId is invalid"}`,
			},
		},
		{
			name:         "err. no identity",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {},
			input:        input{bookID: "10", identity: false},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"no identity"}`,
			},
		},
		{
			name: "err. no copies",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {
				r.EXPECT().
					Borrow(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errs.ErrInventoryExhausted)
			},
			input: input{bookID: "10", identity: true},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no copies available for borrowing"}`,
			},
		},
		{
			name: "err. duplicate loan",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {
				r.EXPECT().
					Borrow(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errs.ErrDuplicateActiveLoan)
			},
			input: input{bookID: "10", identity: true},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"user already has an active loan for this book"}`,
			},
		},
		{
			name: "err. user not found",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {
				r.EXPECT().
					Borrow(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errs.ErrUserNotFound)
			},
			input: input{bookID: "10", identity: true},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"user not found"}`,
			},
		},
		{
			name: "err. lock conflict",
			mockBehavior: func(r *service_mocks.MockCirculationService, req input) {
				r.EXPECT().
					Borrow(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errs.ErrConcurrencyConflict)
			},
			input: input{bookID: "10", identity: true},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"circulation conflict, retry the request"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCirculationService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books/:bookId/borrow", h.BorrowBook, md.IdentityContext)

			r := httptest.NewRequest(
				http.MethodPost, fmt.Sprintf("/books/%s/borrow", tt.input.bookID), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.input.identity {
				r.Header.Set(auth.XUserIDHeader, "1")
				r.Header.Set(auth.XUserNameHeader, "kari")
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCirculationService)

	completed := activeLoan()
	completed.Status = model.StatusCompleted
	returnedAt := borrowedAt.Add(48 * time.Hour)
	completed.ReturnedAt = &returnedAt
	completed.UpdatedAt = returnedAt

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Return(gomock.Any(), int64(1), int64(10)).
					Return(completed, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"transactionUid":"8b7f9d4e-1f5a-4b6c-9e2d-3a8c5f7b1d42","userId":1,"bookId":10,"type":"BORROW","status":"COMPLETED","borrowedAt":"2026-08-01T10:00:00Z","dueDate":"2026-08-15T10:00:00Z","returnedAt":"2026-08-03T10:00:00Z","createdAt":"2026-08-01T10:00:00Z","updatedAt":"2026-08-03T10:00:00Z"}`,
			},
		},
		{
			name: "err. no active loan",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Return(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errs.ErrNoActiveLoan)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"no active loan found"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCirculationService) {
				r.EXPECT().
					Return(gomock.Any(), int64(1), int64(10)).
					Return(model.Transaction{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockCirculationService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, nil, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books/:bookId/return", h.ReturnBook, md.IdentityContext)

			r := httptest.NewRequest(http.MethodPost, "/books/10/return", http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set(auth.XUserIDHeader, "1")
			r.Header.Set(auth.XUserNameHeader, "kari")
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	createdAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"isbn":"978-82-02-12345-6","title":"Sult","author":"Knut Hamsun","category":"fiction","totalCopies":3}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Create(gomock.Any(), model.CreateBookRequest{
						ISBN:        "978-82-02-12345-6",
						Title:       "Sult",
						Author:      "Knut Hamsun",
						Category:    "fiction",
						TotalCopies: 3,
					}).
					Return(model.Book{
						ID:              1,
						ISBN:            "978-82-02-12345-6",
						Title:           "Sult",
						Author:          "Knut Hamsun",
						Category:        "fiction",
						TotalCopies:     3,
						AvailableCopies: 3,
						CreatedAt:       createdAt,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1,"isbn":"978-82-02-12345-6","title":"Sult","author":"Knut Hamsun","category":"fiction","totalCopies":3,"availableCopies":3,"createdAt":"2026-08-01T09:00:00Z","status":"AVAILABLE"}`,
			},
		},
		{
			name:         "err. title required",
			body:         `{"isbn":"978-82-02-12345-6","author":"Knut Hamsun","category":"fiction","totalCopies":3}`,
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name: "err. duplicate isbn",
			body: `{"isbn":"978-82-02-12345-6","title":"Sult","author":"Knut Hamsun","category":"fiction","totalCopies":3}`,
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(model.Book{}, errs.ErrDuplicateISBN)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book with this isbn already exists"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(nil, svc, nil, nil, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books", h.CreateBook)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_GetBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		query        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok",
			query: "?page=1&size=2",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					List(gomock.Any(), model.BookFilter{Page: 1, Size: 2}).
					Return(model.ListBooks{
						Paging: model.Paging{Page: 1, PageSize: 2, TotalElements: 1},
						Items: []model.Book{
							{
								ID:              1,
								ISBN:            "978-82-02-12345-6",
								Title:           "Sult",
								Author:          "Knut Hamsun",
								Category:        "fiction",
								TotalCopies:     3,
								AvailableCopies: 3,
								CreatedAt:       time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
							},
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":2,"totalElements":1,"items":[{"id":1,"isbn":"978-82-02-12345-6","title":"Sult","author":"Knut Hamsun","category":"fiction","totalCopies":3,"availableCopies":3,"createdAt":"2026-08-01T09:00:00Z","status":"AVAILABLE"}]}`,
			},
		},
		{
			name:         "err. negative page",
			query:        "?page=-1&size=10",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:         "err. zero size",
			query:        "?page=1&size=0",
			mockBehavior: func(r *service_mocks.MockBookService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"size is invalid"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			h := handler.New(nil, svc, nil, nil, zap.NewExample().Named("test"))

			e := echo.New()
			e.GET("/books", h.GetBooks)

			r := httptest.NewRequest(http.MethodGet, "/books"+tt.query, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBookService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Delete(gomock.Any(), int64(10)).
					Return(nil)
			},
			response: response{expectedCode: http.StatusNoContent},
		},
		{
			name: "err. not found",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Delete(gomock.Any(), int64(10)).
					Return(errs.ErrBookNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book not found"}`,
			},
		},
		{
			name: "err. circulation history",
			mockBehavior: func(r *service_mocks.MockBookService) {
				r.EXPECT().
					Delete(gomock.Any(), int64(10)).
					Return(errs.ErrBookInUse)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book has circulation history"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockBookService(c)
			h := handler.New(nil, svc, nil, nil, zap.NewExample().Named("test"))

			e := echo.New()
			e.DELETE("/books/:bookId", h.DeleteBook)

			r := httptest.NewRequest(http.MethodDelete, "/books/10", http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetTransaction(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCirculationService(c)
	h := handler.New(svc, nil, nil, nil, zap.NewExample().Named("test"))

	svc.EXPECT().
		Transaction(gomock.Any(), "missing-uid").
		Return(model.Transaction{}, errs.ErrNotFound)

	e := echo.New()
	e.GET("/transactions/:transactionUid", h.GetTransaction)

	r := httptest.NewRequest(http.MethodGet, "/transactions/missing-uid", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"message":"not found"}`, strings.Trim(w.Body.String(), "\n"))
}
