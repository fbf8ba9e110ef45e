package testutil

import "net/http"

// WithBearer sets the Authorization header the way the portal's gateway
// client does, so handler tests exercise the real auth middleware path.
func WithBearer(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
