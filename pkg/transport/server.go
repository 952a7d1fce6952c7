// Copyright 2025 The sapdocs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sapdocs "github.com/sap-docs/mcp-server"
	"github.com/sap-docs/mcp-server/pkg/config"
	"github.com/sap-docs/mcp-server/pkg/logger"
	"github.com/sap-docs/mcp-server/pkg/tools"
)

// sessionHeader carries the session identifier between client and
// server. It must be CORS-exposed so browser clients can read it.
const sessionHeader = "Mcp-Session-Id"

// Server is the streaming HTTP transport.
type Server struct {
	cfg       config.ServerConfig
	tags      map[string]string
	registry  *tools.Registry
	sessions  *SessionManager
	freshness *freshnessWatcher
	documents int
	libraries int

	httpServer  *http.Server
	stopSweeper context.CancelFunc
	logger      *slog.Logger
}

// NewServer wires the transport. dataDir enables the /status freshness
// watcher and may be empty in tests; documents and libraries are the
// loaded catalog sizes reported on /status.
func NewServer(cfg config.ServerConfig, registry *tools.Registry, dataDir string, documents, libraries int, tags map[string]string) *Server {
	s := &Server{
		cfg:       cfg,
		tags:      tags,
		registry:  registry,
		sessions:  NewSessionManager(cfg.SessionDeadline(), cfg.EventLogSize),
		documents: documents,
		libraries: libraries,
		logger:    logger.GetLogger(),
	}
	if dataDir != "" {
		f, err := newFreshnessWatcher(dataDir)
		if err != nil {
			s.logger.Warn("index freshness watcher unavailable", "error", err)
		} else {
			s.freshness = f
		}
	}
	return s
}

// Router assembles the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(metricsMiddleware)

	r.Post("/mcp", s.handlePost)
	r.Get("/mcp", s.handleStream)
	r.Delete("/mcp", s.handleDelete)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Start runs the listener until Shutdown.
func (s *Server) Start() error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	s.sessions.StartSweeper(sweepCtx, s.cfg.SweepEvery())

	s.httpServer = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("transport listening", "address", s.cfg.Address(), "protocol", ProtocolVersion)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("transport failed: %w", err)
	}
	return nil
}

// Shutdown closes all sessions and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	s.sessions.DestroyAll()
	if s.freshness != nil {
		s.freshness.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handlePost serves JSON-RPC requests. Initialize creates a session;
// every other method requires a live session header.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		s.respondRPC(w, r, nil, errorResponse(nil, ParseError, "unreadable body"))
		return
	}
	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondRPC(w, r, nil, errorResponse(nil, ParseError, "malformed JSON-RPC envelope"))
		return
	}

	var session *Session
	if id := r.Header.Get(sessionHeader); id != "" {
		session, err = s.sessions.Get(id)
		if err != nil {
			s.respondSessionError(w, req.ID)
			return
		}
	} else if req.Method == "initialize" {
		session = s.sessions.Create(NewDispatcher(s.registry))
		sessionsLive.Set(float64(s.sessions.Count()))
		w.Header().Set(sessionHeader, session.ID)
	} else {
		s.respondSessionError(w, req.ID)
		return
	}

	ctx, cancel := context.WithTimeout(session.Context(), s.cfg.RequestDeadline())
	defer cancel()

	resp := session.Dispatcher.Dispatch(ctx, &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.respondRPC(w, r, session, *resp)
}

// respondRPC writes a JSON-RPC response as plain JSON or, when the
// client accepts it, as a single SSE event recorded for replay.
func (s *Server) respondRPC(w http.ResponseWriter, r *http.Request, session *Session, resp JSONRPCResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}

	if session != nil && strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		streamID := session.Events.NewStreamID()
		id := session.Events.StoreEvent(streamID, payload)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", id, payload)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) respondSessionError(w http.ResponseWriter, id interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(errorResponse(id, SessionError, "no valid session; send initialize first"))
}

// handleStream opens the server-to-client SSE channel. With a
// Last-Event-Id header the stored tail beyond that id is replayed
// first, in original order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(r.Header.Get(sessionHeader))
	if err != nil {
		s.respondSessionError(w, nil)
		return
	}
	if !strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		http.Error(w, "stream requires Accept: text/event-stream", http.StatusNotAcceptable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	send := func(id string, payload []byte) error {
		if _, err := fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", id, payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if last := r.Header.Get("Last-Event-Id"); last != "" {
		if _, err := session.Events.ReplayAfter(last, send); err != nil {
			return
		}
	}

	// Hold the stream open until the client goes away or the session
	// terminates.
	select {
	case <-r.Context().Done():
	case <-session.Context().Done():
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(sessionHeader)
	if err := s.sessions.Destroy(id); err != nil {
		s.respondSessionError(w, nil)
		return
	}
	sessionsLive.Set(float64(s.sessions.Count()))
	w.WriteHeader(http.StatusOK)
}

// handleHealth answers independently of session state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service":   ServerName,
		"version":   sapdocs.Version,
		"transport": "streamable-http",
		"protocol":  ProtocolVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"build":     sapdocs.GetVersion(),
		"sessions":  s.sessions.Count(),
		"documents": s.documents,
		"libraries": s.libraries,
	}
	if len(s.tags) > 0 {
		status["tags"] = s.tags
	}
	if s.freshness != nil {
		status["index"] = s.freshness.Snapshot()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// corsMiddleware is permissive by default; configured origins restrict
// it. The session header must be exposed for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if s.cfg.CORS != nil && len(s.cfg.CORS.AllowedOrigins) > 0 {
			origin = ""
			for _, o := range s.cfg.CORS.AllowedOrigins {
				if o == r.Header.Get("Origin") {
					origin = o
					break
				}
			}
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, "+sessionHeader+", Last-Event-Id")
			w.Header().Set("Access-Control-Expose-Headers", sessionHeader)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
