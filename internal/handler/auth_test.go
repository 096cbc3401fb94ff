package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dineshkumaran1996/library-api/internal/config"
	"github.com/dineshkumaran1996/library-api/internal/utils"
)

const testSecret = "test-secret"

func newAuthHandler() *AuthHandler {
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 60, BcryptCost: 4}
	return NewAuthHandler(cfg, newFakeUserStore())
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func postForm(t *testing.T, h echo.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestRegisterSucceedsOnce(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/api/user/register",
		`{"username":"alice","email":"alice@example.com","password":"pw","role":"admin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: code = %d, want 201: %s", rec.Code, rec.Body)
	}

	rec = postJSON(t, h.Register, "/api/user/register",
		`{"username":"alice","email":"other@example.com","password":"pw","role":"member"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate username: code = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.Register, "/api/user/register",
		`{"username":"bob","email":"alice@example.com","password":"pw","role":"member"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: code = %d, want 400", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthHandler()

	rec := postJSON(t, h.Register, "/api/user/register",
		`{"username":"","email":"a@b.c","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing username: code = %d, want 400", rec.Code)
	}

	rec = postJSON(t, h.Register, "/api/user/register",
		`{"username":"carol","email":"carol@example.com","password":"pw","role":"superuser"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: code = %d, want 400", rec.Code)
	}

	// Empty role defaults to member.
	rec = postJSON(t, h.Register, "/api/user/register",
		`{"username":"carol","email":"carol@example.com","password":"pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("default role: code = %d, want 201", rec.Code)
	}
	u, err := h.Users.GetByUsername(context.Background(), "carol")
	if err != nil || u.Role != "member" {
		t.Fatalf("stored user = %+v, err = %v, want member role", u, err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	h := newAuthHandler()
	postJSON(t, h.Register, "/api/user/register",
		`{"username":"alice","email":"alice@example.com","password":"pw","role":"admin"}`)

	rec := postForm(t, h.Login, "/api/user/login",
		url.Values{"username": {"alice"}, "password": {"pw"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: code = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", resp.TokenType)
	}
	sub, err := utils.ParseAccessToken(testSecret, resp.AccessToken)
	if err != nil || sub != "alice" {
		t.Fatalf("token subject = %q, err = %v, want alice", sub, err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newAuthHandler()
	postJSON(t, h.Register, "/api/user/register",
		`{"username":"alice","email":"alice@example.com","password":"pw","role":"member"}`)

	rec := postForm(t, h.Login, "/api/user/login",
		url.Values{"username": {"alice"}, "password": {"nope"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: code = %d, want 400", rec.Code)
	}

	rec = postForm(t, h.Login, "/api/user/login",
		url.Values{"username": {"nobody"}, "password": {"pw"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown user: code = %d, want 400", rec.Code)
	}
}
