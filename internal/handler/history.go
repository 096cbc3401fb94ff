package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/model"
	"github.com/dineshkumaran1996/library-api/internal/repository"
)

// LoanStore is the read surface of the history endpoint. Satisfied by
// *repository.LoanRepo.
type LoanStore interface {
	Search(ctx context.Context, f repository.LoanFilter) ([]model.Loan, error)
}

// HistoryHandler serves the admin-only loan history search.
type HistoryHandler struct {
	Users UserStore
	Loans LoanStore
}

func NewHistoryHandler(users UserStore, loans LoanStore) *HistoryHandler {
	return &HistoryHandler{Users: users, Loans: loans}
}

// Search handles GET /api/history?email&book_title&type&date. The route
// is admin-gated by middleware; on top of that the target user resolved
// from email must itself be an admin. Each non-empty query parameter
// becomes an equality predicate, AND-combined over loan events.
func (h *HistoryHandler) Search(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	target, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if target.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	loans, err := h.Loans.Search(ctx, repository.LoanFilter{
		BorrowerEmail: email,
		BookTitle:     c.QueryParam("book_title"),
		Event:         strings.ToLower(c.QueryParam("type")),
		Date:          c.QueryParam("date"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, loans)
}
