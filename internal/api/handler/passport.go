package handler

import (
	"net/http"

	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

// Passport serves the public product page data a QR code resolves to.
type Passport struct {
	products *core.ProductService
	qr       *core.QRCodeService
}

func NewPassport(products *core.ProductService, qr *core.QRCodeService) *Passport {
	return &Passport{products: products, qr: qr}
}

// Get godoc
//
//	@Summary		Get a product passport
//	@Description	Public page data for a product, the target of its printed QR code. No authentication.
//	@Tags			Passports
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	model.Passport
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/p/{id} [get]
func (h *Passport) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProduct(w, r, h.products)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, model.NewPassport(p, h.qr.URL(p.ID)))
}
