package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

type Scan struct {
	svc *core.ScanService
}

func NewScan(svc *core.ScanService) *Scan {
	return &Scan{svc: svc}
}

type LogScanResponse struct {
	Logged bool `json:"logged"`
}

// Log godoc
//
//	@Summary		Log a scan
//	@Description	Records that the caller scanned the product. A repeat scan within 24 hours refreshes the earlier record. Unknown products and store failures answer logged=false rather than an error status.
//	@Tags			Scans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	handler.LogScanResponse
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/scans [post]
func (h *Scan) Log(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	productID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	logged := h.svc.Log(r.Context(), claims.Sub, productID)
	response.WriteJSON(w, http.StatusOK, LogScanResponse{Logged: logged})
}

// History godoc
//
//	@Summary		List your scans
//	@Description	Returns the caller's scan history, newest first, with the product name and image captured at scan time.
//	@Tags			Scans
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"	default(50)
//	@Success		200		{object}	response.ListResponse{items=[]model.ScanRecord}
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/api/v1/me/scans [get]
func (h *Scan) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	limit := request.ParseLimit(r, core.DefaultHistoryLimit, core.MaxHistoryLimit)
	records, err := h.svc.ListByUser(r.Context(), claims.Sub, limit)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteList(w, records)
}
