package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

// Component edits the components embedded in a product. Every operation
// returns the updated product.
type Component struct {
	svc *core.ProductService
}

func NewComponent(svc *core.ProductService) *Component {
	return &Component{svc: svc}
}

// Add godoc
//
//	@Summary		Add a component
//	@Description	Appends a component to the product under a new id and returns the updated product.
//	@Tags			Components
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Product ID"
//	@Param			body	body		request.Component	true	"Component details"
//	@Success		201		{object}	model.Product
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/components [post]
func (h *Component) Add(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.svc)
	if !ok {
		return
	}

	var req request.Component
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.AddComponent(r.Context(), p.ID, req.ToModel())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, updated)
}

// Update godoc
//
//	@Summary		Replace a component
//	@Description	Replaces the component with the given id, keeping the id, and returns the updated product.
//	@Tags			Components
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Product ID"
//	@Param			componentID	path		string				true	"Component ID"
//	@Param			body		body		request.Component	true	"Component details"
//	@Success		200			{object}	model.Product
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		401			{object}	response.ErrorResponse
//	@Failure		403			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		409			{object}	response.ErrorResponse
//	@Failure		500			{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/components/{componentID} [put]
func (h *Component) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.svc)
	if !ok {
		return
	}

	componentID, err := request.RequireID(chi.URLParam(r, "componentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.Component
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.UpdateComponent(r.Context(), p.ID, componentID, req.ToModel())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// Delete godoc
//
//	@Summary		Remove a component
//	@Description	Removes the component with the given id and returns the updated product.
//	@Tags			Components
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id			path		string	true	"Product ID"
//	@Param			componentID	path		string	true	"Component ID"
//	@Success		200			{object}	model.Product
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		401			{object}	response.ErrorResponse
//	@Failure		403			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		409			{object}	response.ErrorResponse
//	@Failure		500			{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/components/{componentID} [delete]
func (h *Component) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.svc)
	if !ok {
		return
	}

	componentID, err := request.RequireID(chi.URLParam(r, "componentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.DeleteComponent(r.Context(), p.ID, componentID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}
