package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultAddr is the address the service listens on when none is
// configured.
const DefaultAddr = ":8000"

// DefaultMaxBodyBytes caps request bodies accepted by the API.
const DefaultMaxBodyBytes = 10 << 20 // 10 MiB

// Server exposes the extraction engine as a JSON API. Extractors are
// keyed by transformation profile name; the empty key is the default
// profile. The map is read-only after construction and shared across
// requests.
type Server struct {
	extractors   map[string]dragparser.Extractor
	fetcher      dragparser.Fetcher
	logger       zerolog.Logger
	maxBodyBytes int64

	srv *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithFetcher enables the extract-by-URL endpoint.
func WithFetcher(f dragparser.Fetcher) ServerOption {
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMaxBodyBytes caps accepted request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// NewServer creates a Server around the given extractors. The map must
// contain the default profile under the empty key.
func NewServer(extractors map[string]dragparser.Extractor, opts ...ServerOption) *Server {
	s := &Server{
		extractors:   extractors,
		logger:       zerolog.Nop(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/extract", s.handleExtract)
	mux.HandleFunc("GET /api/v1/extract", s.handleExtractURL)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logging(mux)
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// extractRequest is the JSON envelope accepted by the POST endpoint.
type extractRequest struct {
	Content  string `json:"content"`
	BaseURL  string `json:"baseUrl,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Profile  string `json:"profile,omitempty"`
}

// handleExtract extracts content from a document supplied in the
// request body: either a JSON envelope or raw markup with options in
// query parameters.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		s.writeError(w, r, dragparser.Errorf(dragparser.EINVALID, "read body: %v", err))
		return
	}
	if int64(len(body)) > s.maxBodyBytes {
		s.writeError(w, r, dragparser.Errorf(dragparser.ERESOURCE,
			"request body exceeds %d bytes", s.maxBodyBytes))
		return
	}

	var doc dragparser.Document
	var profile string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req extractRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, dragparser.Errorf(dragparser.EINVALID, "invalid JSON: %v", err))
			return
		}
		doc = dragparser.Document{
			Raw:      []byte(req.Content),
			Encoding: req.Encoding,
			BaseURL:  req.BaseURL,
		}
		profile = req.Profile
	} else {
		q := r.URL.Query()
		doc = dragparser.Document{
			Raw:      body,
			Encoding: q.Get("encoding"),
			BaseURL:  q.Get("base"),
		}
		profile = q.Get("profile")
	}

	s.extract(w, r, &doc, profile)
}

// handleExtractURL fetches a document by URL and extracts it in a
// single request.
func (s *Server) handleExtractURL(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		s.writeError(w, r, dragparser.Errorf(dragparser.EUNAVAILABLE,
			"fetching is not enabled"))
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.writeError(w, r, dragparser.Errorf(dragparser.EINVALID, "url parameter required"))
		return
	}

	doc, err := s.fetcher.Fetch(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.extract(w, r, doc, r.URL.Query().Get("profile"))
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request, doc *dragparser.Document, profile string) {
	extractor, ok := s.extractors[profile]
	if !ok {
		s.writeError(w, r, dragparser.Errorf(dragparser.EINVALID,
			"unknown profile %q", profile))
		return
	}

	extracted, err := extractor.Extract(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, extracted)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dragparser.ErrorCode(err)

	var body errorResponse
	body.Error.Code = code
	body.Error.Message = dragparser.ErrorMessage(err)

	if code == dragparser.EINTERNAL {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		body.Error.Message = "Internal error."
	}

	s.writeJSON(w, statusForCode(code), body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForCode maps application error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case dragparser.EINVALID, dragparser.EINVALIDRULE:
		return http.StatusBadRequest
	case dragparser.ENOCONTENT, dragparser.EUNPARSEABLE, dragparser.ETOODEEP:
		return http.StatusUnprocessableEntity
	case dragparser.ERESOURCE:
		return http.StatusRequestEntityTooLarge
	case dragparser.EUNAVAILABLE:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logging wraps the handler with request-scoped structured logging.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
