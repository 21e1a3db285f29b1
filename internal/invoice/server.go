package invoice

import (
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// Server handles HTTP requests for invoices
type Server struct {
	service   *Service
	basicAuth BasicAuth
	mux       *http.ServeMux
	limiter   *rate.Limiter
	semaphore chan struct{}
	version   string
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Limits throttles the endpoints that run OCR and extraction. A zero Rate
// disables the rate limiter; MaxConcurrent <= 0 means 1.
type Limits struct {
	Rate          float64
	Burst         int
	MaxConcurrent int
}

// DefaultLimits are used by NewServer
var DefaultLimits = Limits{Rate: 5, Burst: 10, MaxConcurrent: 4}

// NewServer creates a new Server with default mux and limits
func NewServer(service *Service, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, basicAuth, http.NewServeMux(), DefaultLimits)
}

// NewServerWithMux creates a new Server with a custom mux and limits
func NewServerWithMux(service *Service, basicAuth BasicAuth, mux *http.ServeMux, limits Limits) *Server {
	if limits.MaxConcurrent <= 0 {
		limits.MaxConcurrent = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if limits.Rate > 0 {
		burst := limits.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(limits.Rate), burst)
	}

	s := &Server{
		service:   service,
		basicAuth: basicAuth,
		mux:       mux,
		limiter:   limiter,
		semaphore: make(chan struct{}, limits.MaxConcurrent),
	}
	s.registerRoutes()
	return s
}

// SetVersion sets the version reported by /health
func (s *Server) SetVersion(version string) {
	s.version = version
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(credentials[0]), []byte(s.basicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(credentials[1]), []byte(s.basicAuth.Password)) == 1
	return userOK && passOK
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Bill Parser"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// throttle rejects requests over the rate limit and bounds how many
// extractions run at once; waiting requests block until a slot frees up or
// the client goes away.
func (s *Server) throttle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again shortly.")
			return
		}

		select {
		case s.semaphore <- struct{}{}:
			defer func() { <-s.semaphore }()
		case <-r.Context().Done():
			slog.Warn("Request cancelled while waiting for a slot", "path", r.URL.Path)
			return
		}

		next(w, r)
	}
}

// registerRoutes registers all routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// API endpoints - invoices (most specific paths first)
	s.mux.HandleFunc("GET /api/invoices/export.xlsx", s.requireAuth(s.handleExport))
	s.mux.HandleFunc("GET /api/invoices/{id}/file", s.requireAuth(s.handleGetInvoiceFile))
	s.mux.HandleFunc("GET /api/invoices/{id}", s.requireAuth(s.handleGetInvoice))
	s.mux.HandleFunc("DELETE /api/invoices/{id}", s.requireAuth(s.handleDeleteInvoice))
	s.mux.HandleFunc("GET /api/invoices", s.requireAuth(s.handleListInvoices))
	s.mux.HandleFunc("POST /api/invoices", s.requireAuth(s.throttle(s.handleUploadInvoice)))
	s.mux.HandleFunc("POST /api/extract", s.requireAuth(s.throttle(s.handleExtractText)))

	// HTML interface
	s.mux.HandleFunc("POST /upload", s.requireAuth(s.throttle(s.handleUploadForm)))
	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("GET /index.html", s.requireAuth(s.handleIndex))
}

// Handler returns the mux wrapped with the CORS middleware
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(s.mux.ServeHTTP)(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
