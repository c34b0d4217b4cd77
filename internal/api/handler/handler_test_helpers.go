package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/transpass/transpass/internal/api/middleware"
	"github.com/transpass/transpass/internal/model"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds multiple chi URL parameters to the request context.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withCompany injects the claims of a company account into the request context.
func withCompany(r *http.Request) *http.Request {
	return r.WithContext(mw.WithClaims(r.Context(), &model.JWTClaims{
		Sub:       companyUserID,
		CompanyID: companyID,
		Email:     "maker@example.com",
		Role:      model.RoleCompany,
	}))
}

// withConsumer injects the claims of a consumer account into the request context.
func withConsumer(r *http.Request) *http.Request {
	return r.WithContext(mw.WithClaims(r.Context(), &model.JWTClaims{
		Sub:   consumerID,
		Email: "shopper@example.com",
		Role:  model.RoleConsumer,
	}))
}

const (
	companyUserID = "user-company-1"
	companyID     = "company-1"
	consumerID    = "user-consumer-1"
	productID     = "product-1"
)
