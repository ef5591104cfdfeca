package acme

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hostbound/certkeeper/core/logger"
)

const challengePathPrefix = "/.well-known/acme-challenge/"

// responderShutdownTimeout bounds how long Stop waits for in-flight probe
// requests to drain.
const responderShutdownTimeout = 5 * time.Second

// Responder is the short-lived HTTP server that answers ACME http-01 probes
// during a single issuance. It holds an immutable snapshot of the challenge
// table taken at construction time: the orchestrator finalizes the full
// token set before the responder starts, so no synchronization is needed on
// the read path.
type Responder struct {
	addr     string
	table    map[string]string
	logger   *slog.Logger
	server   *http.Server
	listener net.Listener
}

// NewResponder creates a responder for the given token -> key-authorization
// table. The table is copied; later mutations by the caller are not visible.
func NewResponder(table map[string]string, addr string, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	snapshot := make(map[string]string, len(table))
	for token, keyAuth := range table {
		snapshot[token] = keyAuth
	}
	return &Responder{
		addr:   addr,
		table:  snapshot,
		logger: logger,
	}
}

// Start binds the listener and begins serving probes on a separate
// goroutine. It returns once the listener is accepting connections, so a
// successful return means probes can no longer race an absent listener.
func (r *Responder) Start() error {
	if r.listener != nil {
		return ErrResponderAlreadyStarted
	}

	listener, err := net.Listen("tcp", r.addr)
	if err != nil {
		return err
	}
	r.listener = listener
	r.server = &http.Server{
		Handler:     r,
		ReadTimeout: 10 * time.Second,
	}

	r.logger.Info("challenge responder listening",
		logger.Component("acme"),
		logger.Addr(listener.Addr().String()))

	go func() {
		if err := r.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			r.logger.Error("challenge responder stopped unexpectedly",
				logger.Component("acme"),
				logger.Error(err))
		}
	}()
	return nil
}

// Stop shuts the responder down, releasing the port. Safe to call when Start
// was never called or failed.
func (r *Responder) Stop() {
	if r.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), responderShutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(ctx); err != nil {
		_ = r.server.Close()
	}
	r.logger.Info("challenge responder stopped", logger.Component("acme"))
}

// Addr returns the bound listener address, or "" before Start.
func (r *Responder) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// ServeHTTP answers only well-formed challenge probes; everything else is a
// not-found to keep the attack surface minimal.
func (r *Responder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	token, ok := strings.CutPrefix(req.URL.Path, challengePathPrefix)
	if !ok || token == "" {
		http.NotFound(w, req)
		return
	}

	keyAuth, ok := r.table[token]
	if !ok {
		r.logger.Warn("probe for unknown challenge token",
			logger.Component("acme"),
			slog.String("path", req.URL.Path))
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(keyAuth))
}
