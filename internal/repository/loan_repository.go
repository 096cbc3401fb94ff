package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dineshkumaran1996/library-api/internal/model"
)

// LoanRepo reads the 'loans' event table. Rows are written by
// insertLoanTx inside the borrow/return transactions owned by BookRepo.
type LoanRepo struct{ DB *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{DB: db} }

// insertLoanTx records one borrow or return event within the caller's
// transaction. Book title and borrower email are denormalized onto the
// row so history filters keep working after a book is deleted.
func insertLoanTx(ctx context.Context, tx *sql.Tx, bookID uint64, title string, u model.User, event string) error {
	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx,
		"INSERT INTO loans (book_id, user_id, book_title, borrower_email, event, event_date) VALUES (?,?,?,?,?,?)",
		bookID, u.ID, title, u.Email, event, now.Format("2006-01-02"))
	return err
}

// LoanFilter holds the optional equality predicates of a history search.
// Empty fields are skipped; non-empty ones are AND-combined.
type LoanFilter struct {
	BorrowerEmail string
	BookTitle     string
	Event         string // "borrow" | "return"
	Date          string // YYYY-MM-DD
}

// Search returns loan events matching every non-empty filter field,
// newest first.
func (r *LoanRepo) Search(ctx context.Context, f LoanFilter) ([]model.Loan, error) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if f.BorrowerEmail != "" {
		conds = append(conds, "borrower_email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(f.BorrowerEmail)))
	}
	if f.BookTitle != "" {
		conds = append(conds, "book_title=?")
		args = append(args, f.BookTitle)
	}
	if f.Event != "" {
		conds = append(conds, "event=?")
		args = append(args, f.Event)
	}
	if f.Date != "" {
		conds = append(conds, "event_date=?")
		args = append(args, f.Date)
	}
	query := "SELECT id,book_id,user_id,book_title,borrower_email,event,event_date,created_at FROM loans"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	loans := make([]model.Loan, 0)
	for rows.Next() {
		var l model.Loan
		if err := rows.Scan(&l.ID, &l.BookID, &l.UserID, &l.BookTitle,
			&l.BorrowerEmail, &l.Event, &l.EventDate, &l.CreatedAt); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
