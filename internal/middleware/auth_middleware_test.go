package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/pkg/auth"
)

func newAuthedRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	m := NewAuthMiddleware(svc)
	r.GET("/protected", m.JWTAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenExp: time.Hour, TokenIssuer: "campusqr.test"})
	token, _, err := svc.GenerateToken(&models.User{ID: 7, Username: "gatehouse", Role: models.RoleGuard})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	router := newAuthedRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}
}

func TestJWTAuthReportsExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenExp: -time.Hour, TokenIssuer: "campusqr.test"})
	token, _, err := svc.GenerateToken(&models.User{ID: 7, Username: "gatehouse", Role: models.RoleGuard})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	router := newAuthedRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
	// An expired token must surface its own code, not the generic
	// invalid-token one
	if !strings.Contains(w.Body.String(), "AUTH_003") {
		t.Errorf("body missing expired-token code: %s", w.Body.String())
	}
}
