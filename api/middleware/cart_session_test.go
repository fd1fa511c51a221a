package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/pkg/config"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
	"github.com/arjunmehta/desikart-backend/pkg/session"
)

type stubMinter struct {
	minted  string
	mints   int
	known   map[string]bool
	mintErr error
}

func (s *stubMinter) Mint(ctx context.Context) (string, error) {
	if s.mintErr != nil {
		return "", s.mintErr
	}
	s.mints++
	return s.minted, nil
}

func (s *stubMinter) Validate(ctx context.Context, token string) error {
	if s.known[token] {
		return nil
	}
	return session.ErrUnknownSession
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{TTLHours: 336, CookieName: "desikart_session"}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func ownerCapture(t *testing.T) (http.Handler, *cart.Owner) {
	t.Helper()
	captured := &cart.Owner{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), captured
}

func TestCartSessionTrustsUserHeader(t *testing.T) {
	next, captured := ownerCapture(t)
	minter := &stubMinter{minted: "should-not-mint"}
	handler := CartSession(minter, testSessionConfig(), false, testLogger())(next)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-Id", userID.String())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 but got %d", w.Code)
	}
	if captured.UserID == nil || *captured.UserID != userID {
		t.Fatalf("expected user owner %s, got %+v", userID, captured)
	}
	if minter.mints != 0 {
		t.Fatalf("expected no session mint for logged-in user")
	}
}

func TestCartSessionRejectsMalformedUserHeader(t *testing.T) {
	next, _ := ownerCapture(t)
	handler := CartSession(&stubMinter{}, testSessionConfig(), false, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-Id", "not-a-uuid")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
}

func TestCartSessionMintsGuestCookie(t *testing.T) {
	next, captured := ownerCapture(t)
	minter := &stubMinter{minted: "fresh-token"}
	handler := CartSession(minter, testSessionConfig(), false, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if minter.mints != 1 {
		t.Fatalf("expected one mint, got %d", minter.mints)
	}
	if captured.SessionKey == nil || *captured.SessionKey != "fresh-token" {
		t.Fatalf("expected session owner, got %+v", captured)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "desikart_session" || cookies[0].Value != "fresh-token" {
		t.Fatalf("unexpected cookies %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestCartSessionReusesValidCookie(t *testing.T) {
	next, captured := ownerCapture(t)
	minter := &stubMinter{known: map[string]bool{"existing-token": true}}
	handler := CartSession(minter, testSessionConfig(), false, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "desikart_session", Value: "existing-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if minter.mints != 0 {
		t.Fatalf("expected no mint for a live session")
	}
	if captured.SessionKey == nil || *captured.SessionKey != "existing-token" {
		t.Fatalf("expected existing session owner, got %+v", captured)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("expected no Set-Cookie for a live session")
	}
}

func TestCartSessionRemintsExpiredCookie(t *testing.T) {
	next, captured := ownerCapture(t)
	minter := &stubMinter{minted: "replacement-token"}
	handler := CartSession(minter, testSessionConfig(), false, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "desikart_session", Value: "expired-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if minter.mints != 1 {
		t.Fatalf("expected a replacement mint, got %d", minter.mints)
	}
	if captured.SessionKey == nil || *captured.SessionKey != "replacement-token" {
		t.Fatalf("expected replacement session owner, got %+v", captured)
	}
}
