package core

import "time"

type Services struct {
	Auth      *AuthService
	Product   *ProductService
	Scan      *ScanService
	Analytics *AnalyticsService
	QRCode    *QRCodeService
	Feed      *ScanFeed
}

// Options configures the services that need more than a database.
type Options struct {
	JWTSecret     string
	JWTIssuer     string
	PublicBaseURL string
	// Location is the timezone analytics buckets scans into.
	Location *time.Location
	// Blobs stores product images and QR codes. Nil disables uploads.
	Blobs BlobStore
}

func NewServices(db DB, opts Options) *Services {
	feed := NewScanFeed()
	products := NewProductService(db, opts.Blobs)
	scans := NewScanService(db, products, feed)

	return &Services{
		Auth:      NewAuthService(db, opts.JWTSecret, opts.JWTIssuer),
		Product:   products,
		Scan:      scans,
		Analytics: NewAnalyticsService(products, scans, opts.Location),
		QRCode:    NewQRCodeService(opts.PublicBaseURL, opts.Blobs),
		Feed:      feed,
	}
}
