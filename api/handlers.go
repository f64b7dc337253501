package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/mall-concierge/agent/account"
	"github.com/tanpawarit/mall-concierge/agent/concierge"
	statex "github.com/tanpawarit/mall-concierge/agent/state"
)

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type postMessageRequest struct {
	Message string `json:"message"`
}

type postMessageResponse struct {
	Reply     string `json:"reply"`
	Converged bool   `json:"converged"`
	Rounds    int    `json:"rounds"`
}

type accountResponse struct {
	UserID  string           `json:"user_id"`
	Points  int              `json:"points"`
	Coupons []account.Coupon `json:"coupons"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSession handles POST /v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	st := statex.NewSessionState(uuid.NewString(), userID, h.now().UTC())
	if err := h.sessions.Save(r.Context(), st); err != nil {
		h.fail(w, r, err, "save session")
		return
	}

	JSON(w, http.StatusCreated, createSessionResponse{SessionID: st.SessionID, UserID: st.UserID})
}

// PostMessage handles POST /v1/sessions/{session_id}/messages. Turns on the
// same session run one at a time.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	st, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		h.fail(w, r, err, "load session")
		return
	}

	reply, err := h.chat.Chat(r.Context(), concierge.Request{
		UserID:  st.UserID,
		Message: req.Message,
		History: st.History,
	})
	if err != nil {
		h.fail(w, r, err, "chat turn")
		return
	}

	st.History = reply.History
	st.Touch(h.now())
	if err := h.sessions.Save(r.Context(), st); err != nil {
		h.fail(w, r, err, "save session")
		return
	}

	JSON(w, http.StatusOK, postMessageResponse{
		Reply:     reply.Text,
		Converged: reply.Converged,
		Rounds:    reply.Rounds,
	})
}

// DeleteSession handles DELETE /v1/sessions/{session_id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	unlock := h.locks.Lock(sessionID)
	defer unlock()

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		h.fail(w, r, err, "delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAccount handles GET /v1/accounts/{user_id}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	acc, err := h.accounts.Account(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "load account")
		return
	}

	coupons := acc.Coupons
	if coupons == nil {
		coupons = []account.Coupon{}
	}
	JSON(w, http.StatusOK, accountResponse{UserID: userID, Points: acc.Points, Coupons: coupons})
}

// ResetAccount handles DELETE /v1/accounts/{user_id}.
func (h *Handler) ResetAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	if err := h.accounts.Reset(r.Context(), userID); err != nil {
		h.fail(w, r, err, "reset account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	event := log.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("op", op).Int("status", status).Msg("request failed")
	Error(w, status, err.Error())
}
