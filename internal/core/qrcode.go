package core

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"

	"rsc.io/qr"

	"github.com/transpass/transpass/internal/model"
	"github.com/transpass/transpass/internal/platform"
)

const qrScale = 8

// QRCodeService renders the QR codes printed on products. Every code encodes
// {baseURL}/p/{productID}; codes already in circulation depend on that shape.
type QRCodeService struct {
	baseURL string
	blobs   *blobUploader
}

func NewQRCodeService(baseURL string, blobs BlobStore) *QRCodeService {
	return &QRCodeService{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   newBlobUploader(blobs),
	}
}

// URL returns the public page URL a product's QR code points to.
func (s *QRCodeService) URL(productID string) string {
	return s.baseURL + "/p/" + productID
}

// PNG renders the QR code for productID.
func (s *QRCodeService) PNG(productID string) ([]byte, error) {
	code, err := qr.Encode(s.URL(productID), qr.M)
	if err != nil {
		return nil, fmt.Errorf("encode qr code for product %s: %w", productID, err)
	}
	code.Scale = qrScale
	return code.PNG(), nil
}

// Store uploads the QR code PNG to qr-codes/{productID}.png and returns its URL.
func (s *QRCodeService) Store(ctx context.Context, productID string) (string, error) {
	png, err := s.PNG(productID)
	if err != nil {
		return "", err
	}
	return s.blobs.put(ctx, qrCodeKey(productID), "image/png", png)
}

// Archive builds a ZIP with one PNG per product, named {name}_{id}.png.
func (s *QRCodeService) Archive(products []model.Product) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range products {
		png, err := s.PNG(p.ID)
		if err != nil {
			return nil, err
		}

		name := p.ID + ".png"
		if safe := platform.SafeName(p.Name); safe != "" {
			name = safe + "_" + name
		}

		// PNG data is already compressed.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("add %s to archive: %w", name, err)
		}
		if _, err := w.Write(png); err != nil {
			return nil, fmt.Errorf("write %s to archive: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
