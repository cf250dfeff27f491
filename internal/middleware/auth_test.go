package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"promptbuddy/internal/models"
	"promptbuddy/internal/token"
)

// testTokenStore returns a token store backed by the test Valkey.
// Skips the test if Valkey is unavailable.
func testTokenStore(t *testing.T) *token.Store {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "token:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return token.NewStore(client)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func issueToken(t *testing.T, store *token.Store, role string) string {
	t.Helper()
	tok, err := store.Create(context.Background(), &token.Data{
		UserID:      uuid.New(),
		Email:       "mw@test.local",
		DisplayName: "MW User",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func TestAuthenticateLoadsIdentity(t *testing.T) {
	store := testTokenStore(t)
	tok := issueToken(t, store, "editor")

	var got *token.Data
	handler := Authenticate(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromCtx(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected identity in context")
	}
	if got.Role != "editor" {
		t.Errorf("role: got %q", got.Role)
	}
}

func TestAuthenticateWithoutToken(t *testing.T) {
	store := testTokenStore(t)

	var got *token.Data
	handler := Authenticate(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromCtx(r.Context())
	}))

	// No Authorization header: request proceeds unauthenticated.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/prompts", nil))

	if got != nil {
		t.Error("expected no identity without a token")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/auth/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: got %d, want 401", w.Code)
	}

	// With an identity in context the request passes.
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	ctx := context.WithValue(req.Context(), IdentityKey, &token.Data{Role: "viewer"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))
	if w.Code != http.StatusOK {
		t.Errorf("authenticated: got %d, want 200", w.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(models.PermWrite)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Unauthenticated: 401.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/prompts", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: got %d, want 401", w.Code)
	}

	// Viewer lacks write: 403.
	req := httptest.NewRequest("POST", "/api/prompts", nil)
	ctx := context.WithValue(req.Context(), IdentityKey, &token.Data{Role: "viewer"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))
	if w.Code != http.StatusForbidden {
		t.Errorf("viewer: got %d, want 403", w.Code)
	}

	// Editor carries write: passes.
	req = httptest.NewRequest("POST", "/api/prompts", nil)
	ctx = context.WithValue(req.Context(), IdentityKey, &token.Data{Role: "editor"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))
	if w.Code != http.StatusOK {
		t.Errorf("editor: got %d, want 200", w.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(r); got != tt.want {
			t.Errorf("header %q: got %q, want %q", tt.header, got, tt.want)
		}
	}
}
