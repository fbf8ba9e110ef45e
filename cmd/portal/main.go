// The portal binary runs the client-side core as a small web process: it
// restores any persisted session at startup, serves the OAuth callback
// route, and redirects users to their role's landing route.
package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"educonnect/internal/callback"
	"educonnect/internal/credential"
	"educonnect/internal/gateway"
	"educonnect/internal/platform/config"
	"educonnect/internal/platform/httpserver"
	"educonnect/internal/platform/logger"
	"educonnect/internal/platform/middleware"
	"educonnect/internal/profile"
	"educonnect/internal/routes"
	"educonnect/internal/session"
)

const restoreTimeout = 15 * time.Second

func main() {
	cfg := config.PortalFromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credPath := cfg.CredentialPath
	if credPath == "" {
		var err error
		credPath, err = credential.DefaultPath()
		if err != nil {
			log.Error("cannot resolve credential path", "error", err)
			os.Exit(1)
		}
	}
	creds, err := credential.NewFile(credPath)
	if err != nil {
		log.Error("credential store init failed", "error", err, "path", credPath)
		os.Exit(1)
	}

	gw := gateway.New(cfg.APIOrigin, creds, log)
	sessions := session.New(gw, creds, log)

	// Restore once at startup. A rejected or malformed credential resolves
	// to logged-out; only network trouble surfaces here, and the portal
	// still starts so the user can retry interactively.
	restoreCtx, cancel := context.WithTimeout(ctx, restoreTimeout)
	if _, err := sessions.RestoreSession(restoreCtx); err != nil {
		log.Warn("session restore failed, starting logged out", "error", err)
	}
	cancel()

	srv := httpserver.New(cfg.Addr, router(sessions, cfg, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("portal listening", "addr", cfg.Addr, "api_origin", cfg.APIOrigin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("portal exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("portal stopped")
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html>
<body>
  <h1>EduConnect</h1>
  <p><a href="{{.GoogleStart}}">Sign in with Google</a></p>
</body>
</html>
`))

// googleStartURL builds the backend's Google sign-in entry point with the
// portal's OAuth client identity attached.
func googleStartURL(cfg config.Portal) string {
	q := url.Values{}
	q.Set("client_id", cfg.OAuthClientID)
	if cfg.OAuthRedirectURI != "" {
		q.Set("redirect_uri", cfg.OAuthRedirectURI)
	}
	return cfg.APIOrigin + "/auth/google/start?" + q.Encode()
}

func router(sessions *session.Manager, cfg config.Portal, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))

	r.Get(routes.Home, func(w http.ResponseWriter, req *http.Request) {
		p := sessions.Profile()
		if p == nil {
			http.Redirect(w, req, routes.Login, http.StatusFound)
			return
		}
		route, err := routes.LandingRouteFor(p.Role)
		if err != nil {
			// Unreachable for a validated profile, but never fall through
			// to a wrong dashboard.
			http.Redirect(w, req, routes.Login, http.StatusFound)
			return
		}
		http.Redirect(w, req, route, http.StatusFound)
	})

	googleStart := googleStartURL(cfg)
	r.Get(routes.Login, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = loginPage.Execute(w, struct{ GoogleStart string }{
			GoogleStart: googleStart,
		})
	})

	r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
		sessions.Logout(req.Context())
		http.Redirect(w, req, routes.Login, http.StatusFound)
	})

	r.Method(http.MethodGet, "/auth/google/callback", callback.New(sessions, log))

	for _, dashboard := range []struct {
		route string
		role  profile.Role
	}{
		{routes.StudentDashboard, profile.RoleStudent},
		{routes.UniversityDashboard, profile.RoleUniversity},
		{routes.AgentDashboard, profile.RoleAgent},
		{routes.AdminDashboard, profile.RoleAdmin},
	} {
		d := dashboard
		r.Get(d.route, func(w http.ResponseWriter, req *http.Request) {
			p := sessions.Profile()
			if p == nil || p.Role != d.role {
				http.Redirect(w, req, routes.Login, http.StatusFound)
				return
			}
			fmt.Fprintf(w, "Welcome, %s", p.DisplayName())
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
