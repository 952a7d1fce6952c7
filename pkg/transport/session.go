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
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sap-docs/mcp-server/pkg/logger"
)

// ErrSessionNotFound is returned for unknown or terminated sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is one client connection's state: its dispatcher, event
// store, and activity timestamps.
type Session struct {
	ID             string
	CreatedAt      time.Time
	LastActivityAt time.Time

	Dispatcher *Dispatcher
	Events     *EventStore

	// cancel aborts in-flight requests when the session terminates.
	cancel context.CancelFunc
	ctx    context.Context
}

// Context returns the session-scoped context; it is cancelled on
// termination so in-flight adapter fetches abort.
func (s *Session) Context() context.Context {
	return s.ctx
}

// SessionManager owns the session map. Mutation happens on create and
// destroy only; per-session state belongs to the session's dispatcher.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logSize  int
	logger   *slog.Logger
}

// NewSessionManager builds a manager with the given inactivity TTL and
// per-stream event log size.
func NewSessionManager(ttl time.Duration, logSize int) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logSize:  logSize,
		logger:   logger.GetLogger(),
	}
}

// Create registers a new session around a dispatcher. Session ids are
// v4 UUIDs (122 bits of randomness).
func (m *SessionManager) Create(d *Dispatcher) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	s := &Session{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		LastActivityAt: now,
		Dispatcher:     d,
		Events:         NewEventStore(m.logSize),
		ctx:            ctx,
		cancel:         cancel,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", s.ID)
	return s
}

// Get returns a live session and refreshes its activity timestamp.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.LastActivityAt = time.Now()
	return s, nil
}

// Destroy terminates a session: cancels in-flight work and removes it
// from the map.
func (m *SessionManager) Destroy(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.cancel()
	m.logger.Debug("session destroyed", "session_id", id)
	return nil
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep destroys sessions idle past the TTL and returns how many were
// removed.
func (m *SessionManager) Sweep() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastActivityAt.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.cancel()
		m.logger.Info("session expired", "session_id", s.ID)
	}
	return len(expired)
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (m *SessionManager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// DestroyAll terminates every session, used on shutdown.
func (m *SessionManager) DestroyAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
}
