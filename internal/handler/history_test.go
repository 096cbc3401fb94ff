package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/model"
)

func historyRequest(t *testing.T, h *HistoryHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/history?"+query, nil)
	rec := httptest.NewRecorder()
	if err := h.Search(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestHistoryUnknownEmail(t *testing.T) {
	h := NewHistoryHandler(newFakeUserStore(), &fakeLoanStore{})
	rec := historyRequest(t, h, "email=ghost@example.com")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestHistoryTargetMustBeAdmin(t *testing.T) {
	users := newFakeUserStore()
	users.Create(context.Background(), "bob", "bob@example.com", "pw", model.RoleMember, 4)
	h := NewHistoryHandler(users, &fakeLoanStore{})

	rec := historyRequest(t, h, "email=bob@example.com")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member target: code = %d, want 403", rec.Code)
	}
}

func TestHistoryFiltersForwarded(t *testing.T) {
	users := newFakeUserStore()
	users.Create(context.Background(), "alice", "alice@example.com", "pw", model.RoleAdmin, 4)
	loans := &fakeLoanStore{result: []model.Loan{{ID: 1, BookTitle: "Dune", Event: "borrow"}}}
	h := NewHistoryHandler(users, loans)

	rec := historyRequest(t, h,
		"email=alice@example.com&book_title=Dune&type=Borrow&date=2026-08-30")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200: %s", rec.Code, rec.Body)
	}
	f := loans.lastFilter
	if f.BorrowerEmail != "alice@example.com" || f.BookTitle != "Dune" ||
		f.Event != "borrow" || f.Date != "2026-08-30" {
		t.Fatalf("filter = %+v", f)
	}
}

func TestHistoryRequiresEmail(t *testing.T) {
	h := NewHistoryHandler(newFakeUserStore(), &fakeLoanStore{})
	rec := historyRequest(t, h, "book_title=Dune")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}
