package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestCSRF(t *testing.T) *CSRF {
	t.Helper()
	c, err := NewCSRF("test-secret", false)
	if err != nil {
		t.Fatalf("new csrf: %v", err)
	}
	return c
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(CSRFToken(r.Context())))
	})
}

func TestCSRFIssuesTokenOnSafeRequest(t *testing.T) {
	c := newTestCSRF(t)
	rec := httptest.NewRecorder()
	c.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	token := rec.Header().Get(CSRFHeader)
	if token == "" {
		t.Fatal("expected token header")
	}
	if rec.Body.String() != token {
		t.Errorf("context token = %q, header token = %q", rec.Body.String(), token)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	if !c.Valid(cookies[0].Value, token) {
		t.Error("issued token does not validate against cookie")
	}
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	c := newTestCSRF(t)
	req := httptest.NewRequest("DELETE", "/quests/1", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "nonce"})
	rec := httptest.NewRecorder()
	c.Middleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCSRFAcceptsHeaderToken(t *testing.T) {
	c := newTestCSRF(t)
	req := httptest.NewRequest("PATCH", "/quests/1", strings.NewReader(`{}`))
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "nonce"})
	req.Header.Set(CSRFHeader, c.Token("nonce"))
	rec := httptest.NewRecorder()
	c.Middleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCSRFAcceptsFormToken(t *testing.T) {
	c := newTestCSRF(t)
	form := url.Values{CSRFField: {c.Token("nonce")}}
	req := httptest.NewRequest("POST", "/quests", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "nonce"})
	rec := httptest.NewRecorder()
	c.Middleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCSRFRejectsTokenFromOtherSession(t *testing.T) {
	c := newTestCSRF(t)
	req := httptest.NewRequest("POST", "/quests", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "mine"})
	req.Header.Set(CSRFHeader, c.Token("theirs"))
	rec := httptest.NewRecorder()
	c.Middleware(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCSRFKeysDiffer(t *testing.T) {
	a, _ := NewCSRF("a", false)
	b, _ := NewCSRF("b", false)
	if a.Token("nonce") == b.Token("nonce") {
		t.Error("different secrets produced the same token")
	}
	r1, _ := NewCSRF("", false)
	r2, _ := NewCSRF("", false)
	if r1.Token("nonce") == r2.Token("nonce") {
		t.Error("random keys produced the same token")
	}
}
