package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"booker/pkg/domain"
)

// Session is the server-held record proving a user is authenticated. The
// browser only ever sees a signed reference to it.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists session records keyed by session id.
type Store interface {
	Save(Session) error
	Get(id string) (Session, bool, error)
	Delete(id string) error
}

const defaultCookieName = "booker_session"

// Config wires a Manager.
type Config struct {
	Store      Store
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager is the session guard: it establishes, resolves, and terminates
// cookie-referenced sessions. It has no opinion on business staleness; a
// session it vouches for may still reference a deleted account.
type Manager struct {
	store      Store
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewManager builds the session guard.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if len(cfg.Secret) < 32 {
		return nil, errors.New("session: secret must be at least 32 characters")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = defaultCookieName
	}
	return &Manager{
		store:      cfg.Store,
		secret:     []byte(cfg.Secret),
		ttl:        ttl,
		cookieName: name,
		secure:     cfg.Secure,
	}, nil
}

// Get resolves the request's session. Any failure — no cookie, bad signature,
// missing or expired record — reads as anonymous.
func (m *Manager) Get(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return Session{}, false
	}
	sid, err := m.verifyCookie(cookie.Value)
	if err != nil {
		return Session{}, false
	}
	sess, ok, err := m.store.Get(sid)
	if err != nil || !ok {
		return Session{}, false
	}
	return sess, true
}

// Establish creates a session for the account and sets the cookie. The store
// write completes before the cookie is emitted; on failure no cookie is set
// and the caller must not treat the user as logged in.
func (m *Manager) Establish(w http.ResponseWriter, account domain.Account) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    account.ID,
		Username:  account.Username,
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}
	if err := m.store.Save(sess); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	value, err := m.signCookie(sess)
	if err != nil {
		return Session{}, fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(w, m.newCookie(value, sess.ExpiresAt))
	return sess, nil
}

// Terminate destroys the request's session and expires the cookie. It is
// idempotent: an absent, invalid, or already-deleted session is a no-op.
func (m *Manager) Terminate(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if sid, err := m.verifyCookie(cookie.Value); err == nil {
			if err := m.store.Delete(sid); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
	}
	http.SetCookie(w, m.expiredCookie())
	return nil
}

func (m *Manager) newCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// signCookie seals the session id into an HS256 JWT. The cookie carries only
// the id; the record itself stays server-side.
func (m *Manager) signCookie(sess Session) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   sess.ID,
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) verifyCookie(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("session: missing subject claim")
	}
	return claims.Subject, nil
}
