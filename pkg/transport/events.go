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
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// defaultEventLogSize bounds the per-stream tail kept for replay.
const defaultEventLogSize = 100

type storedEvent struct {
	seq     uint64
	payload []byte
}

type eventStream struct {
	events  []storedEvent
	nextSeq uint64
}

// EventStore keeps a bounded per-stream tail of sent messages so a
// reconnecting client can resume with Last-Event-Id. A single writer
// appends; replay readers copy under the lock.
type EventStore struct {
	mu      sync.Mutex
	streams map[string]*eventStream
	limit   int
}

// NewEventStore builds a store keeping the last limit events per
// stream. limit <= 0 applies the default of 100.
func NewEventStore(limit int) *EventStore {
	if limit <= 0 {
		limit = defaultEventLogSize
	}
	return &EventStore{
		streams: make(map[string]*eventStream),
		limit:   limit,
	}
}

// NewStreamID mints a fresh stream identifier.
func (s *EventStore) NewStreamID() string {
	return uuid.NewString()
}

// StoreEvent appends a message to a stream and returns its event id.
// Identifiers are strictly increasing per stream.
func (s *EventStore) StoreEvent(streamID string, payload []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		st = &eventStream{nextSeq: 1}
		s.streams[streamID] = st
	}
	seq := st.nextSeq
	st.nextSeq++

	st.events = append(st.events, storedEvent{seq: seq, payload: payload})
	if len(st.events) > s.limit {
		st.events = st.events[len(st.events)-s.limit:]
	}
	return eventID(streamID, seq)
}

// ReplayAfter sends every event of the stream with an identifier
// greater than lastEventID, in original order, and returns the stream
// identifier. An unknown lastEventID yields a fresh stream.
func (s *EventStore) ReplayAfter(lastEventID string, send func(id string, payload []byte) error) (string, error) {
	streamID, seq, ok := parseEventID(lastEventID)
	if !ok {
		return s.NewStreamID(), nil
	}

	s.mu.Lock()
	st, found := s.streams[streamID]
	if !found {
		s.mu.Unlock()
		return s.NewStreamID(), nil
	}
	pending := make([]storedEvent, 0, len(st.events))
	for _, ev := range st.events {
		if ev.seq > seq {
			pending = append(pending, ev)
		}
	}
	s.mu.Unlock()

	for _, ev := range pending {
		if err := send(eventID(streamID, ev.seq), ev.payload); err != nil {
			return "", err
		}
	}
	return streamID, nil
}

// DropStream discards a stream's tail, e.g. on session termination.
func (s *EventStore) DropStream(streamID string) {
	s.mu.Lock()
	delete(s.streams, streamID)
	s.mu.Unlock()
}

func eventID(streamID string, seq uint64) string {
	return fmt.Sprintf("%s_%d", streamID, seq)
}

func parseEventID(id string) (streamID string, seq uint64, ok bool) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 || i == len(id)-1 {
		return "", 0, false
	}
	seq, err := strconv.ParseUint(id[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return id[:i], seq, true
}
