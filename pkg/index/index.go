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

// Package index provides the SQLite FTS5 full-text index over the
// document catalog. The index is a derived artifact: it is rebuilt from
// the catalog at index time and opened read-only at serve time.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sap-docs/mcp-server/pkg/catalog"
)

const schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS docs USING fts5(
	library,
	kind,
	title,
	description,
	keywords,
	control,
	namespace,
	id UNINDEXED,
	rel_file UNINDEXED,
	snippets UNINDEXED,
	tokenize = 'unicode61'
);
`

// DBFile is the index database file name within the data directory.
const DBFile = "docs.sqlite"

// defaultQueryLimit bounds candidate sets handed to the scorer.
const defaultQueryLimit = 100

// Entry is one row of the full-text index.
type Entry struct {
	ID          string
	Library     string
	Kind        catalog.Kind
	Title       string
	Description string
	Keywords    string
	Control     string
	Namespace   string
	RelFile     string
	Snippets    int
}

// Index wraps the FTS database.
type Index struct {
	db *sql.DB
}

// Open opens (or creates) the index at path. Use ":memory:" for tests.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Rebuild replaces the index content with the given catalog. The whole
// rebuild runs in one transaction so readers never observe a partial
// index.
func (ix *Index) Rebuild(c *catalog.Catalog) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM docs`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO docs
		(library, kind, title, description, keywords, control, namespace, id, rel_file, snippets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	c.All(func(doc *catalog.Document) bool {
		var control, namespace string
		if doc.Meta != nil {
			control = doc.Meta.Control
			namespace = doc.Meta.Namespace
		}
		_, insertErr = stmt.Exec(
			doc.Library,
			string(doc.Kind),
			doc.Title,
			doc.Description,
			doc.Meta.KeywordBlob(),
			control,
			namespace,
			doc.ID,
			doc.RelFile,
			doc.Snippets,
		)
		return insertErr == nil
	})
	if insertErr != nil {
		return fmt.Errorf("failed to index document: %w", insertErr)
	}
	return tx.Commit()
}

// Query runs a full-text match for one query variant and returns up to
// limit entries in bm25 rank order. limit <= 0 applies the default.
func (ix *Index) Query(variant string, limit int) ([]Entry, error) {
	match := ftsMatchExpr(variant)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	rows, err := ix.db.Query(`SELECT
			id, library, kind, title, description, keywords, control, namespace, rel_file, snippets
		FROM docs WHERE docs MATCH ? ORDER BY rank LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.Library, &kind, &e.Title, &e.Description,
			&e.Keywords, &e.Control, &e.Namespace, &e.RelFile, &e.Snippets); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = catalog.Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed documents.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.db.QueryRow(`SELECT count(*) FROM docs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count index: %w", err)
	}
	return n, nil
}

// ftsMatchExpr quotes each query token and enables prefix matching, so
// user input can never inject FTS syntax.
func ftsMatchExpr(variant string) string {
	fields := strings.Fields(variant)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"*`)
	}
	return strings.Join(quoted, " ")
}
