package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"booker/internal/app"
	"booker/internal/session"
	"booker/internal/store"
	"booker/pkg/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubCatalog struct {
	volumes map[string]domain.SearchResultBook
	err     error
}

func (c *stubCatalog) Search(query string, limit int) ([]domain.SearchResultBook, error) {
	if c.err != nil {
		return nil, c.err
	}
	res := make([]domain.SearchResultBook, 0, len(c.volumes))
	for _, v := range c.volumes {
		res = append(res, v)
	}
	return res, nil
}

func (c *stubCatalog) GetVolume(googleID string) (*domain.SearchResultBook, error) {
	if c.err != nil {
		return nil, c.err
	}
	if v, ok := c.volumes[googleID]; ok {
		return &v, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T, catalog app.Catalog) (*Server, *store.MemoryStore, *session.Manager) {
	t.Helper()
	st := store.NewMemoryStore()
	a, err := app.New(app.Config{Accounts: st, Favorites: st, Catalog: catalog})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	sessions, err := session.NewManager(session.Config{
		Store:  session.NewMemoryStore(),
		Secret: testSecret,
	})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	srv, err := New(Config{App: a, Sessions: sessions, SearchMaxResults: 20})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st, sessions
}

func doRequest(srv *Server, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	return w
}

// establish creates a session for the account out of band and returns the
// resulting cookie, the way a browser would hold one.
func establish(t *testing.T, sessions *session.Manager, account domain.Account) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	if _, err := sessions.Establish(w, account); err != nil {
		t.Fatalf("establish session: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "booker_session" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLoginSuccess(t *testing.T) {
	srv, st, _ := newTestServer(t, nil)
	account, err := st.Create("alice", "pw123456")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"pw123456"}`))
	w := doRequest(srv, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["id"] != account.ID || resp["username"] != "alice" {
		t.Fatalf("unexpected body: %v", resp)
	}
	cookie := sessionCookie(t, w)
	if cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("session cookie must be set and HttpOnly: %+v", cookie)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv, st, _ := newTestServer(t, nil)
	if _, err := st.Create("alice", "pw123456"); err != nil {
		t.Fatalf("create account: %v", err)
	}

	tests := []struct {
		name, body string
	}{
		{"wrong password", `{"username":"alice","password":"nope1234"}`},
		{"unknown user", `{"username":"bob","password":"pw123456"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			w := doRequest(srv, r)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp map[string]string
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["error"] != "invalid credentials" {
				t.Fatalf("error = %q, want %q", resp["error"], "invalid credentials")
			}
			if len(w.Result().Cookies()) != 0 {
				t.Fatal("failed login must not set a cookie")
			}
		})
	}
}

func TestSignupRedirectsWithSession(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"username":"alice","password":"pw123456"}`))
	w := doRequest(srv, r)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/search" {
		t.Fatalf("Location = %q, want /search", loc)
	}
	if c := sessionCookie(t, w); c.Value == "" {
		t.Fatal("signup must establish a session")
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv, st, _ := newTestServer(t, nil)
	if _, err := st.Create("alice", "pw123456"); err != nil {
		t.Fatalf("create account: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"username":"alice","password":"other123"}`))
	w := doRequest(srv, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	srv, st, sessions := newTestServer(t, nil)
	account, _ := st.Create("alice", "pw123456")
	cookie := establish(t, sessions, account)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.AddCookie(cookie)
	w := doRequest(srv, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 {
		t.Fatalf("logout must expire the cookie, got MaxAge=%d", c.MaxAge)
	}

	// No cookie at all is still a success.
	w = doRequest(srv, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("cookieless logout status = %d, want 200", w.Code)
	}
}

func TestAuthUnknownRoutes(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/auth/refresh"},
		{http.MethodGet, "/api/auth/login"},
		{http.MethodPut, "/api/auth/logout"},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		if w := doRequest(srv, r); w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tc.method, tc.path, w.Code)
		}
	}
}

func TestLoginMalformedBody(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("not json"))
	if w := doRequest(srv, r); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
