package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, GetAdminName(c))
	})
	return r
}

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateToken("alice", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Name != "alice" || claims.Role != RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	InitJWT("test-secret")

	expired, err := GenerateToken("alice", RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidateToken(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	InitJWT("other-secret")
	foreign, _ := GenerateToken("mallory", RoleAdmin, time.Hour)
	InitJWT("test-secret")
	if _, err := ValidateToken(foreign); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestAdminMiddleware(t *testing.T) {
	InitJWT("test-secret")
	r := newTestRouter()

	admin, _ := GenerateToken("alice", RoleAdmin, time.Hour)
	viewer, _ := GenerateToken("bob", "viewer", time.Hour)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + admin, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"non-admin role", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.status, w.Code)
		}
		if tc.status == http.StatusOK && w.Body.String() != "alice" {
			t.Errorf("expected admin name in context, got %q", w.Body.String())
		}
	}
}
