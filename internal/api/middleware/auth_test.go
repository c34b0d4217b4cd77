package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader(t *testing.T) {
	// Auth checks the header before validating, so a nil service is safe here.
	handler := Auth(nil)(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	assert.NoError(t, err)
	assert.Equal(t, "missing or malformed authorization header", body["error"])
}

func TestAuth_ValidToken(t *testing.T) {
	auth := core.NewAuthService(nil, testSecret, "transpass")
	token, err := auth.IssueToken(&model.User{ID: "u1", Email: "a@b.c", Role: model.RoleConsumer})
	require.NoError(t, err)

	var got *model.JWTClaims
	handler := Auth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.Sub)
}

func TestAuth_InvalidToken(t *testing.T) {
	auth := core.NewAuthService(nil, testSecret, "transpass")
	handler := Auth(auth)(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"empty", "", ""},
		{"no prefix", "abc.def.ghi", ""},
		{"basic auth ignored", "Basic dXNlcjpwYXNz", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearer(req))
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleCompany)(okHandler())

	tests := []struct {
		name   string
		claims *model.JWTClaims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"consumer", &model.JWTClaims{Sub: "u1", Role: model.RoleConsumer}, http.StatusForbidden},
		{"company", &model.JWTClaims{Sub: "u1", Role: model.RoleCompany}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/products", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
