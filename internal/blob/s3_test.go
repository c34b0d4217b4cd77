package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 answers path-style S3 requests and records them.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	status, respBody := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if respBody != "" {
		w.Header().Set("Content-Type", "application/xml")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

func newTestStore(t *testing.T, fake *fakeS3, publicURL string) *S3Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewS3Store(zerolog.Nop(), Options{
		Endpoint:  srv.URL,
		Bucket:    "transpass",
		AccessKey: "access",
		SecretKey: "secret",
		PublicURL: publicURL,
	})
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake, "https://cdn.example/")

	url, err := store.Put(context.Background(), "qr-codes/p1.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/qr-codes/p1.png", url)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/transpass/qr-codes/p1.png", fake.requests[0].path)
	assert.Equal(t, "image/png", fake.requests[0].contentType)
	assert.Contains(t, fake.requests[0].body, "png-bytes")
}

func TestS3Store_URLWithoutPublicURL(t *testing.T) {
	store := NewS3Store(zerolog.Nop(), Options{Endpoint: "http://minio:9000/", Bucket: "media"})
	assert.Equal(t, "http://minio:9000/media/product-images/1_a.png", store.URL("product-images/1_a.png"))
}

func TestS3Store_PutError(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusForbidden,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	_, err := store.Put(context.Background(), "k.png", "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put object k.png")
}

func TestS3Store_Delete(t *testing.T) {
	fake := &fakeS3{status: http.StatusNoContent}
	store := newTestStore(t, fake, "")

	require.NoError(t, store.Delete(context.Background(), "qr-codes/p1.png"))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/transpass/qr-codes/p1.png", fake.requests[0].path)
}

func TestS3Store_EnsureBucketAlreadyOwned(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusConflict,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>BucketAlreadyOwnedByYou</Code><Message>exists</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/transpass", fake.requests[0].path)
}

func TestS3Store_EnsureBucketCreates(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake, "")

	require.NoError(t, store.EnsureBucket(context.Background()))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
}

func TestS3Store_EnsureBucketOwnedElsewhere(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusConflict,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>BucketAlreadyExists</Code><Message>taken</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	err := store.EnsureBucket(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create bucket transpass")
}

func TestS3Store_EnsureBucketErrorMentioningCode(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusForbidden,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>not allowed to check BucketAlreadyOwnedByYou</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	assert.Error(t, store.EnsureBucket(context.Background()))
}

func TestS3Store_DeleteMissingObject(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusNotFound,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>gone</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	assert.NoError(t, store.Delete(context.Background(), "qr-codes/p1.png"))
}

func TestS3Store_DeleteErrorMentioningNoSuchKey(t *testing.T) {
	fake := &fakeS3{
		status: http.StatusForbidden,
		body:   `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>NoSuchKey check denied</Message></Error>`,
	}
	store := newTestStore(t, fake, "")

	err := store.Delete(context.Background(), "qr-codes/p1.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete object qr-codes/p1.png")
}
