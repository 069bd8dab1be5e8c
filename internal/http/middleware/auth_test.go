package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pactly/go-pact-backend/internal/auth"
	"github.com/pactly/go-pact-backend/internal/domain"
)

func authEngine(t *testing.T, tokens *auth.Manager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func TestRequireAuth_RejectsMissingOrMalformedHeader(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	r := authEngine(t, tokens)

	for _, header := range []string{"", "token abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q -> %d, want 401", header, w.Code)
		}
	}
}

func TestRequireAuth_RejectsForeignToken(t *testing.T) {
	signer := auth.NewManager("other-secret", time.Hour)
	token, err := signer.Sign(&domain.User{ID: "u1", Name: "Ana"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	r := authEngine(t, auth.NewManager("secret", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token -> %d, want 401", w.Code)
	}
}

func TestRequireAuth_SetsIdentity(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	token, err := tokens.Sign(&domain.User{ID: "u1", Name: "Ana"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	r := authEngine(t, tokens)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token -> %d, body=%s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"user_id":"u1"}` {
		t.Fatalf("identity not propagated: %s", body)
	}
}
