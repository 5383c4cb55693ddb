package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// CORS libera apenas as origens de ALLOW_ORIGINS. Entradas "*.dominio" aceitam
// qualquer subdomínio, mas não o domínio raiz.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	exact := make(map[string]struct{}, len(allowedOrigins))
	var suffixes []string
	for _, entry := range allowedOrigins {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case strings.HasPrefix(entry, "*."):
			suffixes = append(suffixes, strings.ToLower(strings.TrimPrefix(entry, "*")))
		default:
			exact[entry] = struct{}{}
		}
	}

	allowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		if _, ok := exact[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, suffix := range suffixes {
			if strings.HasSuffix(host, suffix) && host != strings.TrimPrefix(suffix, ".") {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
				h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
