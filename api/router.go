// Package api is the JSON HTTP surface over the concierge, the session store
// and the account ledger.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/mall-concierge/agent/concierge"
	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	statex "github.com/tanpawarit/mall-concierge/agent/state"
)

type Chatter interface {
	Chat(ctx context.Context, req concierge.Request) (concierge.Reply, error)
}

// Handler holds all API handler state.
type Handler struct {
	chat     Chatter
	accounts contractx.AccountStore
	sessions statex.Store
	locks    *keyedMutex
	now      func() time.Time
}

func NewHandler(chat Chatter, accounts contractx.AccountStore, sessions statex.Store) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("chatter is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	return &Handler{
		chat:     chat,
		accounts: accounts,
		sessions: sessions,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}, nil
}

// Routes mounts the v1 API and the health check.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Post("/sessions/{session_id}/messages", h.PostMessage)
		r.Delete("/sessions/{session_id}", h.DeleteSession)

		r.Get("/accounts/{user_id}", h.GetAccount)
		r.Delete("/accounts/{user_id}", h.ResetAccount)
	})
}

// NewRouter builds the middleware stack and mounts h.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog)
	r.Use(chimw.Recoverer)
	h.Routes(r)
	return r
}

// requestLog puts a request-scoped zerolog logger into the context and logs
// one line per request.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := log.Logger.With().
			Str("request_id", chimw.GetReqID(r.Context())).
			Logger()
		ctx := logger.WithContext(r.Context())

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
