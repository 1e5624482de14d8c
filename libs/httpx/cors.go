package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy controls cross-origin access to the HTTP surface.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// WithCORS emits CORS headers for allowed origins and answers preflight
// requests directly. A policy with no origins leaves the handler untouched.
func WithCORS(p CORSPolicy) Middleware {
	origins := make(map[string]struct{}, len(p.AllowedOrigins))
	anyOrigin := false
	for _, o := range p.AllowedOrigins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[strings.ToLower(o)] = struct{}{}
		}
	}
	if !anyOrigin && len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	methods := joinNonEmpty(p.AllowedMethods)
	reqHeaders := joinNonEmpty(p.AllowedHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			_, known := origins[strings.ToLower(origin)]
			if origin == "" || (!anyOrigin && !known) {
				next.ServeHTTP(w, r)
				return
			}

			// Credentialed responses must echo the origin, never "*".
			if anyOrigin && !p.AllowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if p.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if methods != "" {
					h.Set("Access-Control-Allow-Methods", methods)
				}
				if reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				if p.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(int(p.MaxAge.Seconds())))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func joinNonEmpty(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
