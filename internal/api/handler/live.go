package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/transpass/transpass/internal/core"
)

const livePingInterval = 30 * time.Second

type Live struct {
	authSvc *core.AuthService
	feed    *core.ScanFeed
}

func NewLive(authSvc *core.AuthService, feed *core.ScanFeed) *Live {
	return &Live{authSvc: authSvc, feed: feed}
}

// Connect godoc
//
//	@Summary		Stream live scans
//	@Description	Upgrades to a WebSocket that streams the company's logged scans as JSON text messages. Browsers cannot set headers on a WebSocket, so the JWT travels in the token query parameter.
//	@Tags			Analytics
//	@Produce		json
//	@Param			id		path		string	true	"Company ID"
//	@Param			token	query		string	true	"JWT from /auth/login"
//	@Success		101		{object}	model.ScanEvent
//	@Failure		400		{string}	string
//	@Failure		401		{string}	string
//	@Failure		403		{string}	string
//	@Router			/companies/{id}/scans/live [get]
func (h *Live) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	companyID := chi.URLParam(r, "id")
	if companyID == "" {
		http.Error(w, "missing company id", http.StatusBadRequest)
		return
	}
	if !canViewCompany(claims, companyID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return // Accept already wrote the HTTP error
	}
	defer conn.CloseNow()

	logger := zerolog.Ctx(r.Context()).With().Str("company_id", companyID).Logger()
	events, cancel := h.feed.Subscribe(companyID)
	defer cancel()

	// The client never sends; CloseRead handles control frames and ends ctx
	// when the peer closes.
	ctx := conn.CloseRead(r.Context())

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	logger.Debug().Msg("live scan feed connected")
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("live scan feed disconnected")
			return
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case evt, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				logger.Error().Err(err).Msg("encode scan event")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
