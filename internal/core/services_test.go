package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServices(t *testing.T) {
	db := &mockDB{}

	svcs := NewServices(db, Options{
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		JWTIssuer:     "transpass",
		PublicBaseURL: "https://transpass.example/",
		Location:      time.UTC,
	})

	require.NotNil(t, svcs)
	assert.NotNil(t, svcs.Auth)
	assert.NotNil(t, svcs.Product)
	assert.NotNil(t, svcs.Scan)
	assert.NotNil(t, svcs.Analytics)
	assert.NotNil(t, svcs.QRCode)
	assert.NotNil(t, svcs.Feed)

	assert.Same(t, svcs.Feed, svcs.Scan.feed)
	assert.Same(t, svcs.Product, svcs.Scan.products)
	assert.Equal(t, "https://transpass.example/p/abc", svcs.QRCode.URL("abc"))
}

func TestNewServices_NilLocationDefaultsToLocal(t *testing.T) {
	svcs := NewServices(&mockDB{}, Options{})
	assert.Equal(t, time.Local, svcs.Analytics.loc)
}
