// Package handler exposes the dev backend over HTTP. The routes and payload
// shapes match what the portal's gateway client sends:
//
//	POST /auth/login    {email, password}      -> {token, profile}
//	POST /auth/register {role, ...fields}      -> {token, profile}
//	POST /auth/google   {code}                 -> {token, profile}
//	GET  /auth/me       (bearer)               -> {profile}
//	POST /auth/logout   (bearer)               -> 204
//
// GET /auth/google/start fakes the provider hop: it mints a one-time code
// and redirects straight back to the portal's callback URL.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"educonnect/internal/devbackend"
	"educonnect/internal/platform/metrics"
	"educonnect/internal/platform/middleware"
	"educonnect/internal/profile"
	dErrors "educonnect/pkg/domain-errors"
)

const requestTimeout = 15 * time.Second

// Handler is the thin HTTP layer. It delegates to the service and keeps
// transport concerns out of the domain logic.
type Handler struct {
	svc         *devbackend.Service
	logger      *slog.Logger
	redirectURI string
}

func New(svc *devbackend.Service, logger *slog.Logger, redirectURI string) *Handler {
	return &Handler{svc: svc, logger: logger, redirectURI: redirectURI}
}

// Router builds the full route tree including middleware, health, and
// metrics endpoints.
func (h *Handler) Router(m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(requestTimeout))

	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/google", h.handleGoogleExchange)
	r.Get("/auth/google/start", h.handleGoogleStart)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.svc, h.logger))
		r.Get("/auth/me", h.handleMe)
		r.Post("/auth/logout", h.handleLogout)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile profile.Profile `json:"profile"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	creds, err := h.svc.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: creds.Token, Profile: creds.Profile})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	role := fields["role"]
	delete(fields, "role")
	creds, err := h.svc.Register(r.Context(), role, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: creds.Token, Profile: creds.Profile})
}

type googleExchangeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleGoogleExchange(w http.ResponseWriter, r *http.Request) {
	var req googleExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	creds, err := h.svc.ExchangeGoogleCode(r.Context(), req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: creds.Token, Profile: creds.Profile})
}

// handleGoogleStart stands in for the real provider consent screen. The
// email query parameter selects the account, the way a provider account
// chooser would.
func (h *Handler) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	code, err := h.svc.MintGoogleCode(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	target, err := url.Parse(h.redirectURI)
	if err != nil {
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "invalid redirect URI"))
		return
	}
	q := target.Query()
	q.Set("code", code)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

type meResponse struct {
	Profile profile.Profile `json:"profile"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CurrentProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Profile: *p})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SignOut(r.Context(), middleware.GetToken(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// writeError centralizes domain error translation so every endpoint shares
// the same JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	message := dErrors.MessageOf(err)
	if status >= http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Message: message, Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
