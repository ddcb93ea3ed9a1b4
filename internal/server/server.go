// Package server exposes health aggregation over HTTP.
//
// Routes:
//
//	GET /healthz                          liveness probe
//	GET /v1/health?purl=...&refresh=true  analyze a component
//	GET /v1/health/last?purl=...          last stored record of a component
//
// Errors are JSON objects carrying the error code, message and request id.
// Invalid purls answer 400, identities no provider supports answer 422.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/stackhealth/pkg/buildinfo"
	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/pipeline"
)

// requestTimeout bounds one analysis. Providers that have not answered by
// then are abandoned and the request fails with 504.
var requestTimeout = 2 * time.Minute

const (
	shutdownTimeout = 10 * time.Second
	headerRequestID = "X-Request-ID"
)

// Service is what the server needs from the pipeline.
// [pipeline.Runner] implements it.
type Service interface {
	Analyze(ctx context.Context, id health.Identity, opts pipeline.Options) (*pipeline.Result, error)
	Last(ctx context.Context, id health.Identity) (*pipeline.Result, error)
}

// Server routes HTTP requests to a [Service].
type Server struct {
	svc    Service
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil logger uses log.Default().
func New(svc Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{svc: svc, logger: logger.With("component", "server")}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleLiveness)
	r.Route("/v1/health", func(r chi.Router) {
		r.Get("/", s.handleAnalyze)
		r.Get("/last", s.handleLast)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type livenessResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type healthResponse struct {
	Record     health.Record `json:"record"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	CacheHit   bool          `json:"cache_hit"`
	DurationMS int64         `json:"duration_ms"`
}

type errorResponse struct {
	Code      errs.Code `json:"code"`
	Error     string    `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, livenessResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, err := identityParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var opts pipeline.Options
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		if opts.Refresh, err = strconv.ParseBool(raw); err != nil {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "refresh must be a boolean, got %q", raw))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	res, err := s.svc.Analyze(ctx, id, opts)
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = errs.New(errs.ErrCodeTimeout, "analysis of %s exceeded %s", id, requestTimeout)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	id, err := identityParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Last(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(res))
}

func identityParam(r *http.Request) (health.Identity, error) {
	raw := r.URL.Query().Get("purl")
	if raw == "" {
		return health.Identity{}, errs.New(errs.ErrCodeInvalidInput, "missing purl query parameter")
	}
	return health.ParseIdentity(raw)
}

func toResponse(res *pipeline.Result) healthResponse {
	return healthResponse{
		Record:     res.Record,
		AnalyzedAt: res.AnalyzedAt,
		CacheHit:   res.CacheHit,
		DurationMS: res.Duration.Milliseconds(),
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Code:      code,
		Error:     errs.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

// requestID accepts an incoming X-Request-ID or assigns a fresh uuid, and
// stores it where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
