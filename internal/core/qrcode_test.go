package core

import (
	"archive/zip"
	"bytes"
	"context"
	"image/png"
	"io"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpass/transpass/internal/model"
)

func decodeQR(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

func TestQRCodeService_URL(t *testing.T) {
	svc := NewQRCodeService("https://transpass.example///", nil)
	assert.Equal(t, "https://transpass.example/p/abc123", svc.URL("abc123"))
}

func TestQRCodeService_PNGRoundTrip(t *testing.T) {
	svc := NewQRCodeService("https://transpass.example", nil)

	data, err := svc.PNG("abc123")
	require.NoError(t, err)

	assert.Equal(t, "https://transpass.example/p/abc123", decodeQR(t, data))
}

func TestQRCodeService_Store(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewQRCodeService("https://transpass.example", blobs)

	url, err := svc.Store(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "https://blobs.example/qr-codes/abc123.png", url)
	require.Contains(t, blobs.objects, "qr-codes/abc123.png")
	assert.Equal(t, "https://transpass.example/p/abc123", decodeQR(t, blobs.objects["qr-codes/abc123.png"]))
}

func TestQRCodeService_StoreWithoutStorage(t *testing.T) {
	svc := NewQRCodeService("https://transpass.example", nil)

	_, err := svc.Store(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQRCodeService_Archive(t *testing.T) {
	svc := NewQRCodeService("https://transpass.example", nil)

	data, err := svc.Archive([]model.Product{
		{ID: "p1", Name: "Oak Chair"},
		{ID: "p2", Name: "!!!"},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "oak_chair_p1.png", zr.File[0].Name)
	assert.Equal(t, "p2.png", zr.File[1].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "https://transpass.example/p/p1", decodeQR(t, content))
}

func TestQRCodeService_ArchiveEmpty(t *testing.T) {
	svc := NewQRCodeService("https://transpass.example", nil)

	data, err := svc.Archive(nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
