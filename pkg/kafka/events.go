package kafka

import "time"

type EventType string

const (
	EventBookBorrowed   EventType = "BOOK_BORROWED"
	EventBookReturned   EventType = "BOOK_RETURNED"
	EventBookAdded      EventType = "BOOK_ADDED"
	EventUserRegistered EventType = "USER_REGISTERED"
)

type BookBorrowedEvent struct {
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transactionId"`
	BookID        int64     `json:"bookId"`
	UserID        int64     `json:"userId"`
	BookTitle     string    `json:"bookTitle"`
	Username      string    `json:"username"`
	Timestamp     time.Time `json:"timestamp"`
}

type BookReturnedEvent struct {
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transactionId"`
	BookID        int64     `json:"bookId"`
	UserID        int64     `json:"userId"`
	BookTitle     string    `json:"bookTitle"`
	Username      string    `json:"username"`
	WasOverdue    bool      `json:"wasOverdue"`
	Timestamp     time.Time `json:"timestamp"`
}

type BookAddedEvent struct {
	Type        EventType `json:"type"`
	BookID      int64     `json:"bookId"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Category    string    `json:"category"`
	TotalCopies int       `json:"totalCopies"`
	Timestamp   time.Time `json:"timestamp"`
}

type UserRegisteredEvent struct {
	Type      EventType `json:"type"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRecord is the union shape consumers decode any circulation event into.
type EventRecord struct {
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transactionId"`
	BookID        int64     `json:"bookId"`
	UserID        int64     `json:"userId"`
	BookTitle     string    `json:"bookTitle"`
	Username      string    `json:"username"`
	WasOverdue    bool      `json:"wasOverdue"`
	Timestamp     time.Time `json:"timestamp"`
}
