package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

type Analytics struct {
	svc *core.AnalyticsService
}

func NewAnalytics(svc *core.AnalyticsService) *Analytics {
	return &Analytics{svc: svc}
}

// Get godoc
//
//	@Summary		Get scan analytics
//	@Description	Returns the scan dashboard of a company: totals, per-product counts and shares, the 10 most recent scans and a 30-day daily series. Callers may only read their own company.
//	@Tags			Analytics
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Company ID"
//	@Success		200	{object}	model.ScanAnalytics
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/companies/{id}/analytics [get]
func (h *Analytics) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	companyID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !canViewCompany(claims, companyID) {
		response.WriteError(w, http.StatusForbidden, "no access to this company")
		return
	}

	analytics, err := h.svc.Get(r.Context(), companyID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, analytics)
}
