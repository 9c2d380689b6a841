package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"bolt-api/pkg/logger"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns a default CORS configuration
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"X-CSRF-Token",
			"Authorization",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Length",
			"Content-Type",
			RequestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}
}

// corsPolicy is a CORSConfig resolved into header values once at startup
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]bool
	credentials bool
	methods     string
	headers     string
	exposed     string
	maxAge      string
}

func newCORSPolicy(config *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		anyOrigin:   len(config.AllowedOrigins) == 0,
		origins:     make(map[string]bool, len(config.AllowedOrigins)),
		credentials: config.AllowCredentials,
		methods:     strings.Join(config.AllowedMethods, ", "),
		headers:     strings.Join(config.AllowedHeaders, ", "),
		exposed:     strings.Join(config.ExposedHeaders, ", "),
	}
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			p.anyOrigin = true
			continue
		}
		p.origins[origin] = true
	}
	if config.MaxAge > 0 {
		p.maxAge = strconv.Itoa(config.MaxAge)
	}
	return p
}

// apply writes the CORS response headers for origin. Listed origins are
// echoed with credentials; the wildcard never carries credentials.
func (p *corsPolicy) apply(h http.Header, origin string) {
	switch {
	case origin != "" && p.origins[origin]:
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if p.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	case p.anyOrigin:
		h.Set("Access-Control-Allow-Origin", "*")
	}

	setIfNotEmpty(h, "Access-Control-Allow-Methods", p.methods)
	setIfNotEmpty(h, "Access-Control-Allow-Headers", p.headers)
	setIfNotEmpty(h, "Access-Control-Expose-Headers", p.exposed)
	setIfNotEmpty(h, "Access-Control-Max-Age", p.maxAge)
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

// CORS creates a CORS middleware. An empty or "*" origin list allows any
// origin without credentials.
func CORS(config *CORSConfig, logger *logger.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}
	policy := newCORSPolicy(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			logger.WithFields(map[string]interface{}{
				"origin": origin,
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("CORS request")

			policy.apply(w.Header(), origin)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
