package model

import (
	"encoding/json"
	"time"
)

type BookStatus string

const (
	BookStatusAvailable  BookStatus = "AVAILABLE"
	BookStatusOutOfStock BookStatus = "OUT_OF_STOCK"
)

type Book struct {
	ID              int64     `json:"id" db:"id"`
	ISBN            string    `json:"isbn" db:"isbn"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Category        string    `json:"category" db:"category"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Status is derived from the counters, never stored.
func (b Book) Status() BookStatus {
	if b.AvailableCopies > 0 {
		return BookStatusAvailable
	}
	return BookStatusOutOfStock
}

func (b Book) MarshalJSON() ([]byte, error) {
	type alias Book
	return json.Marshal(struct {
		alias
		Status BookStatus `json:"status"`
	}{alias(b), b.Status()})
}

type Availability struct {
	Total     int `json:"total" db:"total_copies"`
	Available int `json:"available" db:"available_copies"`
}

type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"fullName" db:"full_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type TransactionType string

const (
	TypeBorrow TransactionType = "BORROW"
	TypeReturn TransactionType = "RETURN"
	// TypeReserve is reserved for hold queues; the engine never assigns it.
	TypeReserve TransactionType = "RESERVE"
)

type TransactionStatus string

const (
	StatusActive    TransactionStatus = "ACTIVE"
	StatusCompleted TransactionStatus = "COMPLETED"
	// Reserved values kept in the domain; the engine never assigns them.
	StatusOverdue   TransactionStatus = "OVERDUE"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusReturned  TransactionStatus = "RETURNED"
)

type Transaction struct {
	ID             int64             `json:"id" db:"id"`
	TransactionUID string            `json:"transactionUid" db:"transaction_uid"`
	UserID         int64             `json:"userId" db:"user_id"`
	BookID         int64             `json:"bookId" db:"book_id"`
	Type           TransactionType   `json:"type" db:"type"`
	Status         TransactionStatus `json:"status" db:"status"`
	BorrowedAt     time.Time         `json:"borrowedAt" db:"borrowed_at"`
	DueDate        time.Time         `json:"dueDate" db:"due_date"`
	ReturnedAt     *time.Time        `json:"returnedAt" db:"returned_at"`
	Notes          string            `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`
}

// IsOverdue reports whether the loan is past due at the given instant.
// Overdue is computed on read; the stored status stays ACTIVE until return.
func (t Transaction) IsOverdue(now time.Time) bool {
	return t.Status == StatusActive && now.After(t.DueDate)
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type BookFilter struct {
	Category      string
	Keyword       string
	AvailableOnly bool
	Page          int
	Size          int
}

type TransactionFilter struct {
	UserID int64
	BookID int64
	Status TransactionStatus
}

type CreateBookRequest struct {
	ISBN        string `json:"isbn" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Category    string `json:"category" validate:"required"`
	TotalCopies int    `json:"totalCopies" validate:"gte=0"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName"`
}
