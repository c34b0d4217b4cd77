package handler

import (
	"net/http"

	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
)

type QRCode struct {
	qr       *core.QRCodeService
	products *core.ProductService
}

func NewQRCode(qr *core.QRCodeService, products *core.ProductService) *QRCode {
	return &QRCode{qr: qr, products: products}
}

type QRCodeResponse struct {
	// URL is where the stored PNG can be fetched.
	URL string `json:"url"`
	// Payload is the text encoded in the code.
	Payload string `json:"payload"`
}

// PNG godoc
//
//	@Summary		Render a QR code
//	@Description	Returns the product's QR code as a PNG. The code encodes {baseUrl}/p/{id}.
//	@Tags			QR Codes
//	@Security		BearerAuth
//	@Produce		png
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{file}		file
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/qrcode [get]
func (h *QRCode) PNG(w http.ResponseWriter, r *http.Request) {
	p, ok := loadProduct(w, r, h.products)
	if !ok {
		return
	}

	png, err := h.qr.PNG(p.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	response.WriteBlob(w, "image/png", "", png)
}

// Store godoc
//
//	@Summary		Store a QR code
//	@Description	Uploads the product's QR code PNG to blob storage and returns where it can be fetched.
//	@Tags			QR Codes
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"
//	@Success		201	{object}	handler.QRCodeResponse
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		403	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/products/{id}/qrcode [post]
func (h *QRCode) Store(w http.ResponseWriter, r *http.Request) {
	p, ok := loadEditableProduct(w, r, h.products)
	if !ok {
		return
	}

	url, err := h.qr.Store(r.Context(), p.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, QRCodeResponse{URL: url, Payload: h.qr.URL(p.ID)})
}

// Archive godoc
//
//	@Summary		Download all QR codes
//	@Description	Returns a ZIP with one PNG per product the caller created, named {name}_{id}.png.
//	@Tags			QR Codes
//	@Security		BearerAuth
//	@Produce		application/zip
//	@Success		200	{file}		file
//	@Failure		401	{object}	response.ErrorResponse
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api/v1/qrcodes.zip [get]
func (h *QRCode) Archive(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	data, err := h.qr.Archive(h.products.ListByOwner(r.Context(), claims.Sub))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteBlob(w, "application/zip", "qrcodes.zip", data)
}
