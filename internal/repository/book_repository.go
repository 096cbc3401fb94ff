package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dineshkumaran1996/library-api/internal/model"
)

// BookRepo persists rows of the 'books' table. Borrow and Return run
// inside a transaction that locks the book row, which is the one
// correctness-critical concurrency point in the system: count must never
// go negative under concurrent borrows.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

const bookColumns = "id,title,description,author,count,borrower_id,created_at,updated_at"

func scanBook(row interface{ Scan(...interface{}) error }) (model.Book, error) {
	var (
		b        model.Book
		borrower sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Author, &b.Count,
		&borrower, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Book{}, err
	}
	if borrower.Valid {
		id := uint64(borrower.Int64)
		b.BorrowerID = &id
	}
	return b, nil
}

// Create inserts a book and returns the stored record.
func (r *BookRepo) Create(ctx context.Context, title, description, author string, count int64) (model.Book, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO books (title, description, author, count) VALUES (?,?,?,?)",
		title, description, author, count)
	if err != nil {
		return model.Book{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Book{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// List returns all books in insertion order.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// GetByID fetches a book by id.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	b, err := scanBook(r.DB.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrBookNotFound
	}
	return b, err
}

// Update overwrites title, description, author and count of the book.
// Not a partial patch: all four fields are replaced.
func (r *BookRepo) Update(ctx context.Context, id uint64, title, description, author string, count int64) (model.Book, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE books SET title=?, description=?, author=?, count=? WHERE id=?",
		title, description, author, count, id)
	if err != nil {
		return model.Book{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the book is missing or the values were already identical;
		// disambiguate with a lookup.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Book{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a book.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// ListByBorrower returns the books currently held by the given user.
func (r *BookRepo) ListByBorrower(ctx context.Context, userID uint64) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE borrower_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Borrow decrements the book's count, marks the requester as borrower and
// records a loan event, all in one transaction. The book row is locked
// with FOR UPDATE so concurrent borrows serialize and count stays >= 0.
// It returns the updated book and the number of books the requester now
// holds.
func (r *BookRepo) Borrow(ctx context.Context, bookID uint64, requester model.User) (model.Book, int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Book{}, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := scanBook(tx.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id=? FOR UPDATE", bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, 0, ErrBookNotFound
	}
	if err != nil {
		return model.Book{}, 0, err
	}
	if b.Count <= 0 {
		return model.Book{}, 0, ErrBookUnavailable
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET count=count-1, borrower_id=? WHERE id=?",
		requester.ID, bookID); err != nil {
		return model.Book{}, 0, err
	}
	if err := insertLoanTx(ctx, tx, bookID, b.Title, requester, model.LoanEventBorrow); err != nil {
		return model.Book{}, 0, err
	}

	var held int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM books WHERE borrower_id=?", requester.ID).Scan(&held); err != nil {
		return model.Book{}, 0, err
	}

	b.Count--
	b.BorrowerID = &requester.ID
	if err := tx.Commit(); err != nil {
		return model.Book{}, 0, err
	}
	committed = true
	return b, held, nil
}

// Return increments the book's count, clears the borrower reference
// unconditionally and records a loan event, all in one transaction.
// No ownership check: whoever calls return clears the reference.
func (r *BookRepo) Return(ctx context.Context, bookID uint64, requester model.User) (model.Book, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := scanBook(tx.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id=? FOR UPDATE", bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrBookNotFound
	}
	if err != nil {
		return model.Book{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET count=count+1, borrower_id=NULL WHERE id=?", bookID); err != nil {
		return model.Book{}, err
	}
	if err := insertLoanTx(ctx, tx, bookID, b.Title, requester, model.LoanEventReturn); err != nil {
		return model.Book{}, err
	}

	b.Count++
	b.BorrowerID = nil
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	committed = true
	return b, nil
}
