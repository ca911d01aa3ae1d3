package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"
)

func newTestManager() *Manager {
	return NewManager(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", MaxAgeSeconds: 3600})
}

func roundTrip(t *testing.T, m *Manager, s *Session) *Session {
	t.Helper()
	w := httptest.NewRecorder()
	if err := m.Save(w, s); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range w.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return m.Load(req)
}

func TestLoadWithoutCookieIsFresh(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if s.SID() == "" {
		t.Fatalf("fresh session should carry a sid")
	}
	if s.IsAuthenticated() {
		t.Fatalf("fresh session should not be authenticated")
	}
	if !s.Dirty() {
		t.Fatalf("fresh session should be written back")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login("alice", "a@x.com")
	s.SetLastCategory(constants.CategorySnacks)
	s.AddFlash(constants.FlashSuccess, "Login successful!")

	got := roundTrip(t, m, s)
	if got.SID() != s.SID() {
		t.Fatalf("sid want %s got %s", s.SID(), got.SID())
	}
	if got.User() != "alice" || got.Email() != "a@x.com" {
		t.Fatalf("user want alice/a@x.com got %s/%s", got.User(), got.Email())
	}
	if got.LastCategory() != constants.CategorySnacks {
		t.Fatalf("last category want snacks got %s", got.LastCategory())
	}
	flashes := got.PopFlashes()
	if len(flashes) != 1 || flashes[0].Message != "Login successful!" {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
	if len(got.PopFlashes()) != 0 {
		t.Fatalf("flashes should be cleared after pop")
	}
}

func TestTamperedCookieYieldsFreshSession(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login("alice", "a@x.com")

	w := httptest.NewRecorder()
	if err := m.Save(w, s); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	cookie := w.Result().Cookies()[0]
	cookie.Value += "x"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got := m.Load(req)
	if got.IsAuthenticated() {
		t.Fatalf("tampered cookie must not authenticate")
	}
	if got.SID() == s.SID() {
		t.Fatalf("tampered cookie should yield a new sid")
	}
}

func TestOtherSecretRejected(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login("alice", "a@x.com")

	other := NewManager(config.SessionConfig{Secret: "another-secret-another-secret-xx"})
	got := roundTrip(t, other, s)
	if !got.IsAuthenticated() {
		t.Fatalf("same manager should accept its own cookie")
	}

	w := httptest.NewRecorder()
	_ = other.Save(w, s)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(w.Result().Cookies()[0])
	if m.Load(req).IsAuthenticated() {
		t.Fatalf("cookie signed with another secret must be rejected")
	}
}

func TestExpiredCookieYieldsFreshSession(t *testing.T) {
	m := newTestManager()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login("alice", "a@x.com")

	w := httptest.NewRecorder()
	if err := m.Save(w, s); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(w.Result().Cookies()[0])
	if m.Load(req).IsAuthenticated() {
		t.Fatalf("expired cookie must not authenticate")
	}
}

func TestResetDropsState(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	sid := s.SID()
	s.Login("alice", "a@x.com")
	s.SetLastCategory(constants.CategorySnacks)

	s.Reset()
	if s.IsAuthenticated() || s.LastCategory() != "" {
		t.Fatalf("reset should clear user and last category")
	}
	if s.SID() == sid {
		t.Fatalf("reset should issue a new sid")
	}
}

func TestCartKey(t *testing.T) {
	m := newTestManager()
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if got := s.CartKey(constants.CartScopeUser); got != "session:"+s.SID() {
		t.Fatalf("anonymous user scope should fall back to session key, got %s", got)
	}
	s.Login("alice", "a@x.com")
	if got := s.CartKey(constants.CartScopeUser); got != "user:a@x.com" {
		t.Fatalf("user scope key want user:a@x.com got %s", got)
	}
	if got := s.CartKey(constants.CartScopeSession); got != "session:"+s.SID() {
		t.Fatalf("session scope key want session:<sid> got %s", got)
	}
}

func TestCookieAttributes(t *testing.T) {
	m := NewManager(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", Secure: true})
	w := httptest.NewRecorder()
	if err := m.Save(w, m.Load(httptest.NewRequest(http.MethodGet, "/", nil))); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
	cookie := w.Result().Cookies()[0]
	if cookie.Name != defaultCookieName {
		t.Fatalf("cookie name want %s got %s", defaultCookieName, cookie.Name)
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("cookie should be http-only and secure")
	}
	if cookie.MaxAge != int(defaultMaxAge.Seconds()) {
		t.Fatalf("cookie max age want %d got %d", int(defaultMaxAge.Seconds()), cookie.MaxAge)
	}
}
