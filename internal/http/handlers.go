package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/forms"
	"github.com/robertarktes/airline-booking-bff/internal/idempotency"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/passenger"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

type AuthBackend interface {
	Login(ctx context.Context, sess session.Session, creds domain.Credentials) (string, error)
	Register(ctx context.Context, sess session.Session, reg domain.Registration) error
}

// ResponseCache replays responses of writes repeated under one Idempotency-Key.
type ResponseCache interface {
	Get(ctx context.Context, tenantID, key string) (*idempotency.Response, error)
	Set(ctx context.Context, tenantID, key string, resp idempotency.Response) error
}

type Deps struct {
	Sessions   session.Store
	Auth       AuthBackend
	Bookings   *booking.Service
	Passengers *passenger.Service
	Idemp      ResponseCache
	Publisher  events.Publisher
	Logger     observability.Logger
	SessionTTL time.Duration
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

type Handlers struct {
	Deps
}

func NewHandlers(deps Deps) *Handlers {
	if deps.Publisher == nil {
		deps.Publisher = events.Discard{}
	}
	return &Handlers{Deps: deps}
}

type sessionView struct {
	SessionID     string `json:"session_id,omitempty"`
	Tenant        string `json:"tenant"`
	Language      string `json:"language,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

func viewOf(s session.Session) sessionView {
	return sessionView{
		SessionID:     s.ID,
		Tenant:        s.TenantID,
		Language:      s.Language,
		Authenticated: s.Authenticated(),
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := forms.Decode(r.Body, forms.Login, &creds); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	current := currentSession(r)
	token, err := h.Auth.Login(r.Context(), session.Anonymous(current.TenantID), creds)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	sess, err := h.Sessions.Create(r.Context(), session.Session{
		Token:    token,
		TenantID: current.TenantID,
		Language: current.Language,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if current.ID != "" {
		if err := h.Sessions.Delete(r.Context(), current.ID); err != nil {
			observability.LoggerFrom(r.Context(), h.Logger).WithError(err).Warn("failed to delete previous session")
		}
	}

	h.setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := forms.Decode(r.Body, forms.Register, &reg); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	sess := currentSession(r)
	if err := h.Auth.Register(r.Context(), sess, reg); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	e := events.New(events.UserRegistered, sess.TenantID, map[string]interface{}{
		"username": reg.Username,
		"country":  reg.Country,
	})
	if err := h.Publisher.Publish(r.Context(), e); err != nil {
		observability.EventPublishFailures.Inc()
		observability.LoggerFrom(r.Context(), h.Logger).WithError(err).Warn("failed to publish registration event")
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if sess.ID != "" {
		if err := h.Sessions.Delete(r.Context(), sess.ID); err != nil {
			writeError(w, r, h.Logger, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(currentSession(r)))
}

// SetLanguage stores the language preference. Anonymous visitors get a
// credential-less session so the preference survives page loads.
func (h *Handlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := forms.Decode(r.Body, forms.Language, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	sess := currentSession(r)
	if sess.ID == "" {
		sess.Language = req.Language
		created, err := h.Sessions.Create(r.Context(), sess)
		if err != nil {
			writeError(w, r, h.Logger, err)
			return
		}
		h.setSessionCookie(w, created.ID)
		writeJSON(w, http.StatusOK, viewOf(created))
		return
	}

	if err := h.Sessions.SetLanguage(r.Context(), sess.ID, req.Language); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	sess.Language = req.Language
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handlers) GetForm(w http.ResponseWriter, r *http.Request) {
	schema, ok := forms.Lookup(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, h.Logger, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (h *Handlers) CreatePassenger(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	key, done := h.replay(w, r, sess)
	if done {
		return
	}

	var p domain.Passenger
	if err := forms.Decode(r.Body, forms.Passenger, &p); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	created, err := h.Passengers.Create(r.Context(), sess, p)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	data := writeJSON(w, http.StatusCreated, created)
	h.remember(r, sess.TenantID, key, http.StatusCreated, data)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			observability.LoggerFrom(r.Context(), h.Logger).WithError(err).Warn("not ready")
			http.Error(w, "Not Ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// ensureSession returns the caller's session, creating a credential-less one
// for visitors that have none yet.
func (h *Handlers) ensureSession(w http.ResponseWriter, r *http.Request) (session.Session, error) {
	sess := currentSession(r)
	if sess.ID != "" {
		return sess, nil
	}
	created, err := h.Sessions.Create(r.Context(), sess)
	if err != nil {
		return session.Session{}, err
	}
	h.setSessionCookie(w, created.ID)
	return created, nil
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// replay writes the stored response for the request's Idempotency-Key, if
// any, and reports whether it did. Keys are bound to the caller's session
// and the request path, so a reused key never replays another resource.
func (h *Handlers) replay(w http.ResponseWriter, r *http.Request, sess session.Session) (string, bool) {
	key := idempotency.RequestKey(sess.ID, r.Method, r.URL.Path, r.Header.Get("Idempotency-Key"))
	if key == "" || h.Idemp == nil {
		return key, false
	}
	existing, err := h.Idemp.Get(r.Context(), sess.TenantID, key)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return key, true
	}
	if existing == nil {
		return key, false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(existing.Status)
	w.Write(existing.Result)
	return key, true
}

func (h *Handlers) remember(r *http.Request, tenantID, key string, status int, data []byte) {
	if key == "" || h.Idemp == nil || data == nil {
		return
	}
	if err := h.Idemp.Set(r.Context(), tenantID, key, idempotency.Response{Status: status, Result: data}); err != nil {
		observability.LoggerFrom(r.Context(), h.Logger).WithError(err).Warn("failed to store idempotent response")
	}
}
