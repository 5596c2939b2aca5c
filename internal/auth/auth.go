// Package auth protects the editor API with a shared password and
// cookie-backed sessions. The share decode and link routes stay public.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	CookieName = "stageplot_session"
	DefaultTTL = 12 * time.Hour
)

// ErrBadPassword is returned by Login when the password does not match.
var ErrBadPassword = errors.New("invalid editor password")

// Words used for generated editor passwords
var stageWords = []string{
	"riser", "wedge", "fader", "cable", "snake",
	"amp", "cymbal", "encore", "gig", "tour",
	"venue", "gain", "reverb", "monitor", "drum",
	"bass", "mic", "stage", "patch", "stereo",
	"phantom", "insert", "aux", "scribble",
}

// Auth guards the editor. An empty password disables the check.
// Sessions slide: every successful validation pushes the expiry out by
// the TTL.
type Auth struct {
	password string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

// Option configures an Auth
type Option func(*Auth)

// WithTTL sets how long an idle session stays valid
func WithTTL(ttl time.Duration) Option {
	return func(a *Auth) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(a *Auth) { a.now = now }
}

// New creates an Auth for the given editor password
func New(password string, opts ...Option) *Auth {
	a := &Auth{
		password: password,
		ttl:      DefaultTTL,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GeneratePassword returns three random stage words joined by dashes
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(stageWords))))
		if err != nil {
			n = big.NewInt(int64(i))
		}
		words[i] = stageWords[n.Int64()]
	}
	return strings.Join(words, "-")
}

// Enabled reports whether a password is required
func (a *Auth) Enabled() bool {
	return a.password != ""
}

// TTL returns the idle session lifetime
func (a *Auth) TTL() time.Duration {
	return a.ttl
}

// Login checks the password and opens a session
func (a *Auth) Login(password string) (string, error) {
	if !a.Enabled() {
		return "", ErrBadPassword
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", ErrBadPassword
	}

	token := newToken()
	a.mu.Lock()
	a.sessions[token] = a.now().Add(a.ttl)
	a.mu.Unlock()
	return token, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Valid reports whether token names a live session and refreshes it
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.sessions[token]
	if !ok {
		return false
	}
	if !now.Before(expiry) {
		delete(a.sessions, token)
		return false
	}
	a.sessions[token] = now.Add(a.ttl)
	return true
}

// Prune drops expired sessions and returns how many were removed
func (a *Auth) Prune() int {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	removed := 0
	for token, expiry := range a.sessions {
		if !now.Before(expiry) {
			delete(a.sessions, token)
			removed++
		}
	}
	return removed
}

// SessionCount returns the number of tracked sessions, expired or not
func (a *Auth) SessionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// Authorized reports whether the request may use the editor. The token
// comes from the session cookie or an "Authorization: Bearer" header.
func (a *Auth) Authorized(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}
	return a.Valid(TokenFromRequest(r))
}

// TokenFromRequest extracts a session token, preferring the cookie
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// Middleware rejects requests without a live session with a JSON 401
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Authorized(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","error":"editor login required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetCookie writes the session cookie for token
func (a *Auth) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.ttl.Seconds()),
	})
}

// ClearCookie expires the session cookie
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
