package model

import "time"

type BookStats struct {
	TotalBooks      int64 `json:"totalBooks" db:"total_books"`
	TotalCopies     int64 `json:"totalCopies" db:"total_copies"`
	AvailableCopies int64 `json:"availableCopies" db:"available_copies"`
	BorrowedCopies  int64 `json:"borrowedCopies" db:"-"`
	OutOfStockBooks int64 `json:"outOfStockBooks" db:"out_of_stock"`
}

type CirculationStats struct {
	TotalTransactions     int64   `json:"totalTransactions" db:"total"`
	ActiveTransactions    int64   `json:"activeTransactions" db:"active"`
	CompletedTransactions int64   `json:"completedTransactions" db:"completed"`
	OverdueTransactions   int64   `json:"overdueTransactions" db:"overdue"`
	TransactionsThisMonth int64   `json:"transactionsThisMonth" db:"this_month"`
	AverageBorrowDays     float64 `json:"averageBorrowDays" db:"avg_borrow_days"`
}

type PopularBook struct {
	BookID      int64  `json:"bookId" db:"book_id"`
	Title       string `json:"title" db:"title"`
	BorrowCount int64  `json:"borrowCount" db:"borrow_count"`
}

type DashboardReport struct {
	Books           BookStats        `json:"books"`
	Circulation     CirculationStats `json:"circulation"`
	BooksByCategory map[string]int64 `json:"booksByCategory"`
	PopularBooks    []PopularBook    `json:"popularBooks"`
	TotalUsers      int64            `json:"totalUsers"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// Event is a row of the analytics read-side, fed from the circulation topic.
type Event struct {
	ID            int64     `json:"id" db:"id"`
	Type          string    `json:"type" db:"event_type"`
	TransactionID int64     `json:"transactionId" db:"transaction_id"`
	UserID        int64     `json:"userId" db:"user_id"`
	BookID        int64     `json:"bookId" db:"book_id"`
	BookTitle     string    `json:"bookTitle" db:"book_title"`
	Username      string    `json:"username" db:"username"`
	WasOverdue    bool      `json:"wasOverdue" db:"was_overdue"`
	OccurredAt    time.Time `json:"occurredAt" db:"occurred_at"`
}
