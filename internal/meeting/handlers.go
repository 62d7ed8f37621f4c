package meeting

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long a reserved code stays joinable.
const DefaultTTL = 24 * time.Hour

// createAttempts bounds retries against code collisions.
const createAttempts = 5

// Handler serves the REST surface clients must pass before signaling:
// creating a code reserves it and mints a logging session id; join and verify
// validate an existing one. The signaling layer trusts this step and never
// re-validates against the store.
type Handler struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewHandler wraps a store with the default TTL.
func NewHandler(store Store) *Handler {
	return &Handler{store: store, ttl: DefaultTTL, now: time.Now}
}

// Register mounts the meeting and interview routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /meeting/create", h.create(KindMeeting))
	mux.HandleFunc("POST /meeting/join", h.join(KindMeeting))
	mux.HandleFunc("GET /meeting/verify/{code}", h.verify(KindMeeting))
	mux.HandleFunc("POST /interview/create", h.create(KindInterview))
	mux.HandleFunc("POST /interview/join", h.join(KindInterview))
	mux.HandleFunc("GET /interview/verify/{code}", h.verify(KindInterview))
}

type joinRequest struct {
	Code string `json:"code"`
}

type codeResponse struct {
	Code      string `json:"code"`
	SessionID string `json:"session_id"`
}

func (h *Handler) create(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for range createAttempts {
			rec := Record{
				Code:      GenerateCode(),
				Kind:      kind,
				SessionID: uuid.NewString(),
				CreatedAt: h.now(),
				ExpiresAt: h.now().Add(h.ttl).Unix(),
			}
			err := h.store.Put(r.Context(), rec)
			if errors.Is(err, ErrCodeTaken) {
				continue
			}
			if err != nil {
				slog.Error("reserve code failed", "kind", kind, "err", err)
				writeError(w, http.StatusInternalServerError, "failed to reserve code")
				return
			}
			slog.Info("code reserved", "kind", kind, "code", rec.Code, "session", rec.SessionID)
			writeJSON(w, http.StatusCreated, codeResponse{Code: rec.Code, SessionID: rec.SessionID})
			return
		}
		writeError(w, http.StatusServiceUnavailable, "code space exhausted")
	}
}

func (h *Handler) join(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}
		h.lookup(w, r, kind, req.Code)
	}
}

func (h *Handler) verify(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.lookup(w, r, kind, r.PathValue("code"))
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, kind Kind, code string) {
	code = strings.ToUpper(strings.TrimSpace(code))

	rec, err := h.store.Get(r.Context(), code)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "code not found")
		return
	}
	if err != nil {
		slog.Error("lookup failed", "code", code, "err", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if rec.Kind != kind {
		writeError(w, http.StatusNotFound, "code not found")
		return
	}
	writeJSON(w, http.StatusOK, codeResponse{Code: rec.Code, SessionID: rec.SessionID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
