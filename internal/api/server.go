package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/api/handler"
	mw "github.com/transpass/transpass/internal/api/middleware"
	"github.com/transpass/transpass/internal/config"
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

// Database is the connection the server runs on. *pgxpool.Pool satisfies it.
type Database interface {
	core.DB
	Ping(ctx context.Context) error
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	db       Database
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, db Database, cfg *config.Config, blobs core.BlobStore) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	services := core.NewServices(db, core.Options{
		JWTSecret:     cfg.JWTSecret,
		JWTIssuer:     cfg.JWTIssuer,
		PublicBaseURL: cfg.PublicBaseURL,
		Location:      loc,
		Blobs:         blobs,
	})

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		db:       db,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Services exposes the wired services, for callers sharing them with other
// listeners.
func (s *Server) Services() *core.Services {
	return s.services
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	auth := handler.NewAuth(s.services.Auth)
	s.router.Post("/auth/register", auth.Register)
	s.router.Post("/auth/login", auth.Login)

	// Public product page data, the target of every printed QR code.
	passport := handler.NewPassport(s.services.Product, s.services.QRCode)
	s.router.Get("/p/{id}", passport.Get)

	// WebSocket: authenticates via ?token= since browsers cannot set headers.
	live := handler.NewLive(s.services.Auth, s.services.Feed)
	s.router.Get("/companies/{id}/scans/live", live.Connect)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.Auth))

		companyOnly := mw.RequireRole(model.RoleCompany)

		// Products
		product := handler.NewProduct(s.services.Product)
		r.Get("/products", product.List)
		r.With(companyOnly).Post("/products", product.Create)
		r.Get("/products/search", product.Search)
		r.Get("/products/{id}", product.Get)
		r.Patch("/products/{id}", product.Update)
		r.Delete("/products/{id}", product.Delete)

		// Components
		component := handler.NewComponent(s.services.Product)
		r.Post("/products/{id}/components", component.Add)
		r.Put("/products/{id}/components/{componentID}", component.Update)
		r.Delete("/products/{id}/components/{componentID}", component.Delete)

		// QR codes
		qrCode := handler.NewQRCode(s.services.QRCode, s.services.Product)
		r.Get("/products/{id}/qrcode", qrCode.PNG)
		r.Post("/products/{id}/qrcode", qrCode.Store)
		r.Get("/qrcodes.zip", qrCode.Archive)

		// Scans
		scan := handler.NewScan(s.services.Scan)
		r.Post("/products/{id}/scans", scan.Log)
		r.Get("/me/scans", scan.History)

		// Analytics
		analytics := handler.NewAnalytics(s.services.Analytics)
		r.With(companyOnly).Get("/companies/{id}/analytics", analytics.Get)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Transpass API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
