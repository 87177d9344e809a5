package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payflow/internal/auth"
)

const testSecret = "test-secret"

func captureUserHandler(got *UserContext, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		*got = user
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAttachesClaimsFromBearerToken(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:   "u-1",
		UserName: "Yamada Taro",
		Role:     auth.RoleManager,
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got UserContext
	var found bool
	handler := Auth(testSecret)(captureUserHandler(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("expected user context for valid token")
	}
	if got.UserID != "u-1" || got.UserName != "Yamada Taro" || got.Role != auth.RoleManager {
		t.Fatalf("unexpected user context: %+v", got)
	}
}

func TestAuthPassesThroughWithoutIdentity(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got UserContext
			var found bool
			handler := Auth(testSecret)(captureUserHandler(&got, &found))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected passthrough, got status %d", rec.Code)
			}
			if found {
				t.Fatalf("expected no user context, got %+v", got)
			}
		})
	}
}

func TestAuthRejectsTokenSignedWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", auth.Claims{
		UserID: "u-2", UserName: "Suzuki", Role: auth.RoleCEO,
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got UserContext
	var found bool
	handler := Auth(testSecret)(captureUserHandler(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatalf("token with wrong signature must not yield an identity, got %+v", got)
	}
}
