package model

import "time"

// Book is a catalog item in the `books` table. Count is the number of
// copies currently on the shelf and never goes below zero; the borrow
// and return operations enforce that inside a row-locking transaction.
// BorrowerID is a weak reference to the user currently holding a copy
// (at most one active borrower at a time), nil when nobody does.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – book title.
//  Description – free-form description.
//  Author      – author name.
//  Count       – copies available (>= 0).
//  BorrowerID  – user currently holding a copy, if any.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Book struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Count       int64     `json:"count"`
	BorrowerID  *uint64   `json:"borrower_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
