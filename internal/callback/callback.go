// Package callback handles the OAuth redirect route: it extracts the
// authorization code from the query string, exchanges it through the session
// manager, and redirects to the role's landing route. The handler is
// idempotent per code so a re-rendered page cannot submit the same code
// twice.
package callback

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"educonnect/internal/profile"
	"educonnect/internal/routes"
	dErrors "educonnect/pkg/domain-errors"
)

// Exchanger is the slice of the session manager the handler needs.
type Exchanger interface {
	ExchangeOAuthCode(ctx context.Context, code string) (*profile.Profile, error)
}

// outcome records a finished exchange so re-invocations replay it instead of
// re-submitting the code.
type outcome struct {
	done  chan struct{}
	route string
	err   error
}

// maxTrackedCodes caps the replay map. Codes are single-use and replays only
// matter within a page-refresh window, so old settled entries can go.
const maxTrackedCodes = 1024

// Handler serves the OAuth redirect route.
type Handler struct {
	sessions Exchanger
	logger   *slog.Logger

	mu       sync.Mutex
	outcomes map[string]*outcome
	order    []string
	maxCodes int
}

// New constructs the handler.
func New(sessions Exchanger, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
		outcomes: make(map[string]*outcome),
		maxCodes: maxTrackedCodes,
	}
}

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html>
<body>
  <h1>Sign-in failed</h1>
  <p>{{.Message}}</p>
  <p><a href="{{.LoginRoute}}">Return to login</a></p>
</body>
</html>
`))

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		// A missing code means the redirect URL itself was malformed. This
		// is terminal: the session manager is never called.
		h.logger.WarnContext(r.Context(), "oauth callback reached without a code")
		h.renderError(w, dErrors.New(dErrors.CodeInvalidCode, "The sign-in redirect was missing its authorization code."))
		return
	}

	o, first := h.claim(code)
	if first {
		p, err := h.sessions.ExchangeOAuthCode(r.Context(), code)
		if err != nil {
			o.err = err
		} else if route, rErr := routes.LandingRouteFor(p.Role); rErr != nil {
			o.err = rErr
		} else {
			o.route = route
		}
		close(o.done)
	} else {
		// Replay: wait for the in-flight exchange rather than racing it.
		<-o.done
	}

	if o.err != nil {
		h.renderError(w, o.err)
		return
	}
	http.Redirect(w, r, o.route, http.StatusFound)
}

// claim returns the outcome slot for a code, creating it on first sight.
func (h *Handler) claim(code string) (*outcome, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.outcomes[code]; ok {
		return o, false
	}
	h.evictSettled()
	o := &outcome{done: make(chan struct{})}
	h.outcomes[code] = o
	h.order = append(h.order, code)
	return o, true
}

// evictSettled drops the oldest finished entries once the map is at capacity.
// In-flight entries are never evicted so a waiting replay keeps its slot.
func (h *Handler) evictSettled() {
	for len(h.outcomes) >= h.maxCodes {
		idx := -1
		for i, code := range h.order {
			select {
			case <-h.outcomes[code].done:
				idx = i
			default:
				continue
			}
			break
		}
		if idx < 0 {
			return
		}
		delete(h.outcomes, h.order[idx])
		h.order = append(h.order[:idx], h.order[idx+1:]...)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(dErrors.HTTPStatus(dErrors.CodeOf(err)))
	renderErr := errorPage.Execute(w, struct {
		Message    string
		LoginRoute string
	}{
		Message:    dErrors.MessageOf(err),
		LoginRoute: routes.Login,
	})
	if renderErr != nil {
		fmt.Fprint(w, "sign-in failed")
	}
}
