package handler

import (
	"net/http"

	"github.com/transpass/transpass/internal/api/request"
	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

type Product struct {
	svc *core.ProductService
}

func NewProduct(svc *core.ProductService) *Product {
	return &Product{svc: svc}
}

// List godoc
//
//	@Summary		List your products
//	@Description	Returns the products the caller created, newest first. When the store is slow the list degrades to a partial or empty result instead of failing.
//	@Tags			Products
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	response.ListResponse{items=[]model.Product}
//	@Failure		401	{object}	response.ErrorResponse
//	@Router			/api/v1/products [get]
func (h *Product) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	response.WriteList(w, h.svc.ListByOwner(r.Context(), claims.Sub))
}

// Create godoc
//
//	@Summary		Create a product
//	@Description	Creates a product owned by the caller. Accepts a JSON body, or a multipart form with a product field holding the same JSON and an optional image file. At most 8 components. Company accounts only.
//	@Tags			Products
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		request.CreateProduct	true	"Product details"
//	@Success		201		{object}	model.Product
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/api/v1/products [post]
func (h *Product) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var (
		req  request.CreateProduct
		file *request.File
		err  error
	)
	if request.IsMultipart(r) {
		file, err = request.DecodeMultipart(w, r, "product", &req)
	} else {
		err = request.Decode(r, &req)
	}
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var companyID *string
	if claims.CompanyID != "" {
		companyID = &claims.CompanyID
	}

	p, err := h.svc.Create(r.Context(), req.ToModel(claims.Sub, companyID), toUpload(file))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, p)
}

// Search godoc
//
//	@Summary		Search products
//	@Description	Filters products by exact category, manufacturer, tag and owner, newest first. The q term is then matched case-insensitively against name, description and model.
//	@Tags			Products
//	@Security		BearerAuth
//	@Produce		json
//	@Param			category		query		string	false	"Exact category"
//	@Param			manufacturer	query		string	false	"Exact manufacturer"
//	@Param			tag				query		string	false	"Tag the product must carry"
//	@Param			owner			query		string	false	"ID of the user who created the product"
//	@Param			q				query		string	false	"Free-text term"
//	@Param			limit			query		int		false	"Maximum rows fetched"	default(50)
//	@Success		200				{object}	response.ListResponse{items=[]model.Product}
//	@Failure		401				{object}	response.ErrorResponse
//	@Failure		500				{object}	response.ErrorResponse
//	@Router			/api/v1/products/search [get]
func (h *Product) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.svc.Search(r.Context(), core.SearchFilters{
		Category:     q.Get("category"),
		Manufacturer: q.Get("manufacturer"),
		Tag:          q.Get("tag"),
		CreatedBy:    q.Get("owner"),
		Query:        q.Get("q"),
		Limit:        request.ParseLimit(r, core.DefaultSearchLimit, core.MaxSearchLimit),
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteList(w, products)
}

// Get godoc
//
//	@Summary		Get a product
//	@Description	Returns one product with its components.
//	@Tags			Products
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	model.Product
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id} [get]
func (h *Product) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProduct(w, r, h.svc)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, p)
}

// Update godoc
//
//	@Summary		Update a product
//	@Description	Partially updates a product. Only the creator or a member of the product's company may call it, and the owner never changes. A components list replaces the current one: entries with the id of an existing component keep it, entries without an id are added. Also accepts a multipart form with a product field and an optional image file.
//	@Tags			Products
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Product ID"
//	@Param			body	body		request.UpdateProduct	true	"Fields to change"
//	@Success		200		{object}	model.Product
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id} [patch]
func (h *Product) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.svc)
	if !ok {
		return
	}

	var (
		req  request.UpdateProduct
		file *request.File
		err  error
	)
	if request.IsMultipart(r) {
		file, err = request.DecodeMultipart(w, r, "product", &req)
	} else {
		err = request.Decode(r, &req)
	}
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), p.ID, req.ToPatch(), toUpload(file))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// Delete godoc
//
//	@Summary		Delete a product
//	@Description	Deletes a product and its stored QR code. Consumers keep their scan history of it.
//	@Tags			Products
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Product ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id} [delete]
func (h *Product) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.svc)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p.ID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
