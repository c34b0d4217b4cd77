package core

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/metrics"
	"github.com/transpass/transpass/internal/platform"
)

// BlobStore stores files and returns a URL they can be fetched from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// blobUploader retries uploads with exponential backoff.
type blobUploader struct {
	store     BlobStore
	attempts  int
	baseDelay time.Duration
}

func newBlobUploader(store BlobStore) *blobUploader {
	return &blobUploader{store: store, attempts: uploadAttempts, baseDelay: uploadBaseDelay}
}

func (u *blobUploader) put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if u == nil || u.store == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidation)
	}

	var url string
	err := Retry(ctx, u.attempts, u.baseDelay, func(ctx context.Context) error {
		var err error
		url, err = u.store.Put(ctx, key, contentType, data)
		return err
	}, func(attempt int, err error) {
		metrics.BlobUploadRetries.Inc()
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Int("attempt", attempt).Msg("blob upload failed, retrying")
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, nil
}

func (u *blobUploader) delete(ctx context.Context, key string) {
	if u == nil || u.store == nil {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete blob")
	}
}

// productImageKey builds product-images/{unixMillis}_{filename}.
func productImageKey(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	ext := strings.ToLower(path.Ext(base))
	name := platform.SafeName(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("product-images/%d_%s%s", now.UnixMilli(), name, ext)
}

func qrCodeKey(productID string) string {
	return "qr-codes/" + productID + ".png"
}
