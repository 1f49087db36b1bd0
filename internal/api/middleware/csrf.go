// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// CSRFProtection rejects state-changing requests (POST, PUT, DELETE, PATCH)
// whose Origin, or Referer as a fallback, is neither same-origin nor listed in
// allowedOrigins. Requests without any origin information are allowed, since
// they cannot come from a browser page (kiosk scripts, curl).
func CSRFProtection(allowedOrigins []string) func(http.Handler) http.Handler {
	originsMap := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originsMap[strings.TrimSuffix(strings.TrimSpace(origin), "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			requestOrigin := getRequestOrigin(r)
			if requestOrigin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !isOriginAllowed(requestOrigin, originsMap, r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "cross-origin request not allowed"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getRequestOrigin extracts the origin from the Origin header, falling back to Referer.
func getRequestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return strings.TrimSuffix(origin, "/")
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isOriginAllowed(requestOrigin string, allowed map[string]bool, r *http.Request) bool {
	if allowed["*"] || allowed[requestOrigin] {
		return true
	}
	return isSameOrigin(requestOrigin, r)
}

func isSameOrigin(requestOrigin string, r *http.Request) bool {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	if r.Host == "" {
		return false
	}
	return requestOrigin == scheme+"://"+r.Host
}
