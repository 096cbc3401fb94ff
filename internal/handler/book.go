package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/middleware"
	"github.com/dineshkumaran1996/library-api/internal/model"
	"github.com/dineshkumaran1996/library-api/internal/queue"
	"github.com/dineshkumaran1996/library-api/internal/repository"
)

// BookStore is the persistence surface of the catalog endpoints.
// Satisfied by *repository.BookRepo. Borrow and Return are transactional
// in the implementation: the count invariant lives behind this interface,
// not in the handler.
type BookStore interface {
	Create(ctx context.Context, title, description, author string, count int64) (model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	GetByID(ctx context.Context, id uint64) (model.Book, error)
	Update(ctx context.Context, id uint64, title, description, author string, count int64) (model.Book, error)
	Delete(ctx context.Context, id uint64) error
	ListByBorrower(ctx context.Context, userID uint64) ([]model.Book, error)
	Borrow(ctx context.Context, bookID uint64, requester model.User) (model.Book, int64, error)
	Return(ctx context.Context, bookID uint64, requester model.User) (model.Book, error)
}

// BookHandler bundles dependencies for the catalog endpoints. Publish is
// called after a successful borrow or return; a nil Publish skips event
// publishing, and publish errors never fail the request.
type BookHandler struct {
	Books   BookStore
	Users   UserStore
	Publish func(ctx context.Context, ev queue.LoanEvent) error
}

func NewBookHandler(books BookStore, users UserStore, publish func(context.Context, queue.LoanEvent) error) *BookHandler {
	return &BookHandler{Books: books, Users: users, Publish: publish}
}

type bookReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Count       int64  `json:"count"`
}

func bookID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid book id")
	}
	return id, nil
}

// Create handles POST /api/book (admin only, enforced by middleware).
func (h *BookHandler) Create(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Count < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required, count must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Books.Create(ctx, req.Title, req.Description, req.Author, req.Count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create book failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /api/book. Public; responses are cached by the Redis
// middleware when configured.
func (h *BookHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list books failed"})
	}
	return c.JSON(http.StatusOK, books)
}

// Get handles GET /api/book/:id. Public.
func (h *BookHandler) Get(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Update handles PUT /api/book/:id (admin only). The update is a full
// overwrite of title, description, author and count, not a patch.
func (h *BookHandler) Update(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Count < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required, count must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Books.Update(ctx, id, req.Title, req.Description, req.Author, req.Count)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update book failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /api/book/:id (admin only).
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Books.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete book failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted successfully"})
}

// Borrow handles PUT /api/book/:id/borrow. The store serializes
// concurrent borrows on the book row; a book with no copies left yields
// 409. num_borrowed_books is the number of books the requester holds
// after this borrow.
func (h *BookHandler) Borrow(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, held, err := h.Books.Borrow(ctx, id, u)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		if errors.Is(err, repository.ErrBookUnavailable) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "book not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "borrow failed"})
	}

	h.publishLoan(c, b, u, model.LoanEventBorrow)

	return c.JSON(http.StatusOK, echo.Map{
		"message":            "book borrowed successfully",
		"num_borrowed_books": held,
	})
}

// Return handles PUT /api/book/:id/return. The borrower reference is
// cleared regardless of who calls; the loan event still records the
// actual caller.
func (h *BookHandler) Return(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Books.Return(ctx, id, u)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "return failed"})
	}

	h.publishLoan(c, b, u, model.LoanEventReturn)

	return c.JSON(http.StatusOK, echo.Map{"message": "book returned successfully"})
}

// BorrowedByUser handles GET /api/user/book?email=. Public; an email that
// resolves to no user yields 401.
func (h *BookHandler) BorrowedByUser(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	books, err := h.Books.ListByBorrower(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list books failed"})
	}
	return c.JSON(http.StatusOK, books)
}

// publishLoan fires a loan event to the broker. Failures are swallowed:
// the catalog mutation is already committed and the consumer log is a
// side channel.
func (h *BookHandler) publishLoan(c echo.Context, b model.Book, u model.User, event string) {
	if h.Publish == nil {
		return
	}
	_ = h.Publish(c.Request().Context(), queue.LoanEvent{
		BookID:        b.ID,
		BookTitle:     b.Title,
		UserID:        u.ID,
		Username:      u.Username,
		BorrowerEmail: u.Email,
		Event:         event,
		CopiesLeft:    b.Count,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}
