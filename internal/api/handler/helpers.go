package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transpass/transpass/internal/api/middleware"
	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

// requireClaims returns the caller's claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*model.JWTClaims, bool) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return nil, false
	}
	return claims, true
}

// canEdit reports whether the caller owns p, either as its creator or as a
// member of the company it is attributed to.
func canEdit(claims *model.JWTClaims, p *model.Product) bool {
	if p.CreatedBy == claims.Sub {
		return true
	}
	return claims.CompanyID != "" && p.CompanyID != nil && *p.CompanyID == claims.CompanyID
}

// canViewCompany reports whether the caller may read companyID's analytics.
func canViewCompany(claims *model.JWTClaims, companyID string) bool {
	return claims.Role == model.RoleCompany && claims.ActingCompany() == companyID
}

// loadProduct reads the product named by the {id} URL parameter, writing
// 400 or 404 when it cannot.
func loadProduct(w http.ResponseWriter, r *http.Request, svc *core.ProductService) (*model.Product, bool) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	p, err := svc.Get(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return nil, false
	}
	if p == nil {
		response.WriteError(w, http.StatusNotFound, "product not found")
		return nil, false
	}
	return p, true
}

// loadEditableProduct is loadProduct plus an ownership check.
func loadEditableProduct(w http.ResponseWriter, r *http.Request, svc *core.ProductService) (*model.Product, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return nil, false
	}
	p, ok := loadProduct(w, r, svc)
	if !ok {
		return nil, false
	}
	if !canEdit(claims, p) {
		response.WriteError(w, http.StatusForbidden, "no access to this product")
		return nil, false
	}
	return p, true
}

func toUpload(f *request.File) *core.Upload {
	if f == nil {
		return nil
	}
	return &core.Upload{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data}
}
