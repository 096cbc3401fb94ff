package model

import "time"

// Loan event types recorded in the `loans` table.
const (
	LoanEventBorrow = "borrow"
	LoanEventReturn = "return"
)

// Loan records one borrow or return event. Rows are written inside the
// same transaction that mutates the book, so the history never disagrees
// with the catalog. Book title and borrower email are denormalized onto
// the row because the history endpoint filters on them directly and the
// referenced book may be deleted later.
//
// Fields:
//  ID            – primary key identifier.
//  BookID        – book the event refers to.
//  UserID        – user who borrowed or returned.
//  BookTitle     – title at the time of the event.
//  BorrowerEmail – email of the acting user.
//  Event         – "borrow" or "return".
//  EventDate     – calendar date of the event (YYYY-MM-DD).
//  CreatedAt     – precise timestamp of the event.
type Loan struct {
	ID            uint64    `json:"id"`
	BookID        uint64    `json:"book_id"`
	UserID        uint64    `json:"user_id"`
	BookTitle     string    `json:"book_title"`
	BorrowerEmail string    `json:"borrower_email"`
	Event         string    `json:"type"`
	EventDate     string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}
