package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"creatorpay/core"
	"creatorpay/observability"
	"creatorpay/storage/audit"
)

// ServerConfig carries the optional collaborators of the RPC server.
type ServerConfig struct {
	RateLimit RateLimit
	Auth      AuthConfig
	Audit     *audit.Store
	Hub       *Hub
	Logger    *slog.Logger
}

// Timeouts bound the HTTP server phases.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

type methodHandler func(ctx context.Context, params []json.RawMessage) (interface{}, error)

type method struct {
	handler methodHandler
	// mutating methods require authentication when it is enabled.
	mutating bool
}

type Server struct {
	processor *core.StateProcessor
	audit     *audit.Store
	hub       *Hub
	limiter   *RateLimiter
	auth      *Authenticator
	logger    *slog.Logger
	methods   map[string]method
}

func NewServer(processor *core.StateProcessor, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		processor: processor,
		audit:     cfg.Audit,
		hub:       cfg.Hub,
		limiter:   NewRateLimiter(cfg.RateLimit),
		auth:      NewAuthenticator(cfg.Auth),
		logger:    logger,
	}
	s.methods = map[string]method{
		"payments_submitRequest":   {handler: s.submitRequest, mutating: true},
		"payments_getPlatform":     {handler: s.getPlatform},
		"payments_getVault":        {handler: s.getVault},
		"payments_getSubscription": {handler: s.getSubscription},
		"payments_getTip":          {handler: s.getTip},
		"payments_getBalance":      {handler: s.getBalance},
		"payments_getNonce":        {handler: s.getNonce},
		"payments_getAuditLog":     {handler: s.getAuditLog},
		"payments_errorKinds":      {handler: s.errorKinds},
	}
	return s
}

// Handler assembles the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLog(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/rpc", s.handle)
	r.Post("/", s.handle)
	if s.hub != nil {
		r.Get("/ws/events", s.handleEventsWS)
	}
	return otelhttp.NewHandler(r, "creatorpay.rpc")
}

// Serve runs the HTTP server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener, t Timeouts) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: t.ReadHeader,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("rpc server listening", slog.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s.hub != nil {
			s.hub.Close()
		}
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handle is the JSON-RPC entry point.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	if !s.limiter.Allow(clientID(r)) {
		recordThrottle("rate_limit")
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = "request body too large"
		}
		writeError(w, status, nil, codeInvalidRequest, message, nil)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	started := time.Now()
	m, ok := s.methods[req.Method]
	if !ok {
		observability.ModuleMetrics().Observe(req.Method, codeMethodNotFound, time.Since(started))
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	ctx := r.Context()
	if m.mutating {
		subject, err := s.auth.Authorize(r)
		if err != nil {
			recordThrottle("auth")
			observability.ModuleMetrics().Observe(req.Method, codeUnauthorized, time.Since(started))
			writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "unauthorized", err.Error())
			return
		}
		if subject != "" {
			ctx = context.WithValue(ctx, contextKeySubject, subject)
		}
	}

	result, err := m.handler(ctx, req.Params)
	if err != nil {
		failure := classify(err)
		observability.ModuleMetrics().Observe(req.Method, failure.err.Code, time.Since(started))
		if failure.status == http.StatusInternalServerError {
			s.logger.Error("rpc handler failed",
				slog.String("method", req.Method),
				slog.String("requestid", RequestID(ctx)),
				slog.Any("error", err))
		}
		writeError(w, failure.status, req.ID, failure.err.Code, failure.err.Message, failure.err.Data)
		return
	}
	observability.ModuleMetrics().Observe(req.Method, 0, time.Since(started))
	writeResult(w, req.ID, result)
}
