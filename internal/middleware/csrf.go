package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/blake2b"
)

const (
	sessionCookieName = "quests_session"
	// CSRFHeader carries the anti-forgery token on script requests and is
	// echoed on every response.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "authenticity_token"

	nonceSize = 32
)

var ErrInvalidToken = errors.New("invalid authenticity token")

type csrfKey struct{}

// CSRF issues a per-session anti-forgery token and rejects state-changing
// requests that do not present it. The session cookie holds a random nonce;
// the token is a keyed BLAKE2b MAC of that nonce, so nothing is stored
// server side.
type CSRF struct {
	key    []byte
	secure bool
}

// NewCSRF creates a token issuer keyed by secret. An empty secret gets a
// random key, which invalidates outstanding tokens on restart.
func NewCSRF(secret string, secureCookie bool) (*CSRF, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
	}
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &CSRF{key: key, secure: secureCookie}, nil
}

// Token derives the anti-forgery token for a session nonce.
func (c *CSRF) Token(nonce string) string {
	mac, _ := blake2b.New256(c.key)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Valid reports whether token belongs to the session nonce.
func (c *CSRF) Valid(nonce, token string) bool {
	if nonce == "" || token == "" {
		return false
	}
	want := c.Token(nonce)
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// Middleware attaches the token to the request context and response
// headers and verifies it on unsafe methods.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := c.sessionNonce(w, r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		token := c.Token(nonce)
		w.Header().Set(CSRFHeader, token)

		if !isSafeMethod(r.Method) {
			presented := r.Header.Get(CSRFHeader)
			if presented == "" {
				presented = r.PostFormValue(CSRFField)
			}
			if !c.Valid(nonce, presented) {
				writeError(w, http.StatusUnprocessableEntity, ErrInvalidToken.Error())
				return
			}
		}

		ctx := context.WithValue(r.Context(), csrfKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c *CSRF) sessionNonce(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, nonceSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session nonce: %w", err)
	}
	nonce := base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    nonce,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nonce, nil
}

// CSRFToken returns the token attached by CSRF.Middleware, or "".
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
