package mcpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	mw "github.com/transpass/transpass/internal/api/middleware"
	"github.com/transpass/transpass/internal/core"
)

// Server exposes the core services as MCP tools over streamable HTTP.
type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *Config
}

// New creates an MCP server whose tools call svcs directly. Every request
// to /mcp must carry a Bearer token issued by the API.
func New(cfg *Config, svcs *core.Services, logger zerolog.Logger) *Server {
	tools := BuildTools(cfg, svcs, logger)

	mcpSrv := server.NewMCPServer(
		cfg.Name,
		"1.0.0",
		server.WithInstructions(cfg.Instructions),
	)
	mcpSrv.AddTools(tools...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.RequestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	streamable := server.NewStreamableHTTPServer(mcpSrv, server.WithEndpointPath("/"))
	router.Mount("/mcp", mw.Auth(svcs.Auth)(streamable))

	logger.Info().Int("tools", len(tools)).Msg("mounted MCP endpoint at /mcp")

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
