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

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexFile is the name of the combined catalog file in the data dir.
const IndexFile = "index.json"

// Catalog is the loaded, immutable set of all documents.
type Catalog struct {
	bundles []Bundle
	byID    map[string]*Document
}

// New assembles a catalog from bundles and builds the id lookup.
// Duplicate identifiers are an error.
func New(bundles []Bundle) (*Catalog, error) {
	c := &Catalog{
		bundles: bundles,
		byID:    make(map[string]*Document),
	}
	for bi := range c.bundles {
		b := &c.bundles[bi]
		for di := range b.Documents {
			doc := &b.Documents[di]
			if !strings.HasPrefix(doc.ID, b.ID+"/") && doc.ID != b.ID {
				return nil, fmt.Errorf("document %q outside bundle %q", doc.ID, b.ID)
			}
			if _, dup := c.byID[doc.ID]; dup {
				return nil, fmt.Errorf("duplicate document id %q", doc.ID)
			}
			c.byID[doc.ID] = doc
		}
	}
	return c, nil
}

// Get returns the document with the given id.
func (c *Catalog) Get(id string) (*Document, error) {
	doc, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// Bundles returns all bundles.
func (c *Catalog) Bundles() []Bundle {
	return c.bundles
}

// Bundle returns the bundle with the given library id.
func (c *Catalog) Bundle(libraryID string) (*Bundle, bool) {
	for i := range c.bundles {
		if c.bundles[i].ID == libraryID {
			return &c.bundles[i], true
		}
	}
	return nil, false
}

// All iterates every document in catalog order.
func (c *Catalog) All(fn func(*Document) bool) {
	for bi := range c.bundles {
		b := &c.bundles[bi]
		for di := range b.Documents {
			if !fn(&b.Documents[di]) {
				return
			}
		}
	}
}

// Len returns the total document count.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Save writes the combined catalog plus one mirror file per library into
// the data directory.
func (c *Catalog) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	byLibrary := make(map[string][]Bundle, len(c.bundles))
	for _, b := range c.bundles {
		byLibrary[b.ID] = append(byLibrary[b.ID], b)
	}

	if err := writeJSON(filepath.Join(dir, IndexFile), c.bundles); err != nil {
		return err
	}
	for id, bundles := range byLibrary {
		name := "data_" + strings.TrimPrefix(id, "/") + ".json"
		if err := writeJSON(filepath.Join(dir, name), bundles); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the combined catalog from the data directory.
func Load(dir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var bundles []Bundle
	if err := json.Unmarshal(raw, &bundles); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].ID < bundles[j].ID })
	return New(bundles)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
