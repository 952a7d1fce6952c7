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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/logger"
)

// IndexFreshness is the /status snapshot of the on-disk index.
type IndexFreshness struct {
	DataDir   string    `json:"data_dir"`
	IndexedAt time.Time `json:"indexed_at,omitzero"`
	ChangedAt time.Time `json:"changed_at,omitzero"`

	// Stale is set when the data directory changed after the catalog
	// was loaded; a restart or re-index is needed to pick it up.
	Stale bool `json:"stale"`
}

// freshnessWatcher observes the data directory and flags the loaded
// catalog as stale when index files change underneath the process.
type freshnessWatcher struct {
	mu       sync.RWMutex
	snapshot IndexFreshness
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

func newFreshnessWatcher(dataDir string) (*freshnessWatcher, error) {
	f := &freshnessWatcher{
		snapshot: IndexFreshness{DataDir: dataDir},
		logger:   logger.GetLogger(),
	}
	if fi, err := os.Stat(filepath.Join(dataDir, catalog.IndexFile)); err == nil {
		f.snapshot.IndexedAt = fi.ModTime()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dataDir); err != nil {
		w.Close()
		return nil, err
	}
	f.watcher = w
	go f.loop()
	return f, nil
}

func (f *freshnessWatcher) loop() {
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != catalog.IndexFile && !strings.HasPrefix(name, "data_") {
				continue
			}
			f.mu.Lock()
			f.snapshot.ChangedAt = time.Now()
			f.snapshot.Stale = true
			f.mu.Unlock()
			f.logger.Info("index data changed on disk", "file", name)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("index watcher error", "error", err)
		}
	}
}

func (f *freshnessWatcher) Snapshot() IndexFreshness {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot
}

func (f *freshnessWatcher) Close() error {
	if f.watcher == nil {
		return nil
	}
	return f.watcher.Close()
}
