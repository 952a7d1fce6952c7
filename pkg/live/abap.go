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

package live

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sap-docs/mcp-server/pkg/markdown"
)

const featureMatrixPrefix = "abap-fm-"

// FeatureMatrixAdapter answers ABAP language-feature availability
// questions from a published Markdown matrix (feature | on-premise |
// cloud). The whole matrix is fetched once per TTL and filtered
// locally.
type FeatureMatrixAdapter struct {
	client    *http.Client
	cache     *ttlCache
	matrixURL string
	ttl       time.Duration
}

var _ Adapter = (*FeatureMatrixAdapter)(nil)

func NewFeatureMatrixAdapter(matrixURL string, timeout, ttl time.Duration) *FeatureMatrixAdapter {
	if matrixURL == "" {
		matrixURL = "https://raw.githubusercontent.com/SAP-samples/abap-cheat-sheets/main/22_Released_ABAP_Classes.md"
	}
	return &FeatureMatrixAdapter{
		client:    newHTTPClient(timeout),
		cache:     newTTLCache(),
		matrixURL: matrixURL,
		ttl:       ttl,
	}
}

func (a *FeatureMatrixAdapter) Name() string     { return "abap-feature-matrix" }
func (a *FeatureMatrixAdapter) IDPrefix() string { return featureMatrixPrefix }

func (a *FeatureMatrixAdapter) Search(ctx context.Context, query string) ([]Hit, error) {
	rows, err := a.rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("feature matrix: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var hits []Hit
	for _, row := range rows {
		if q == "" || strings.Contains(strings.ToLower(row.Title), q) || strings.Contains(strings.ToLower(row.Snippet), q) {
			hits = append(hits, row)
		}
	}
	return hits, nil
}

func (a *FeatureMatrixAdapter) GetByID(ctx context.Context, id string) (string, string, string, error) {
	rows, err := a.rows(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("feature matrix: %w", err)
	}
	for _, row := range rows {
		if row.ID == id {
			return row.Title, row.Snippet, row.URL, nil
		}
	}
	return "", "", "", nil
}

// rows returns the parsed matrix, fetching it when the cache is cold.
func (a *FeatureMatrixAdapter) rows(ctx context.Context) ([]Hit, error) {
	key := cacheKey("matrix", a.matrixURL)
	if hits, ok := a.cache.get(key); ok {
		return hits, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.matrixURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	hits := a.parseMatrix(string(body))
	a.cache.set(key, hits, a.ttl)
	return hits, nil
}

// parseMatrix extracts Markdown table rows. The first cell names the
// feature; remaining cells describe availability per flavor.
func (a *FeatureMatrixAdapter) parseMatrix(body string) []Hit {
	var hits []Hit
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitTableRow(line)
		if len(cells) < 2 || isSeparatorRow(cells) || isHeaderRow(cells) {
			continue
		}
		feature := sanitizeHTML(cells[0])
		if feature == "" {
			continue
		}
		hits = append(hits, Hit{
			ID:      featureMatrixPrefix + markdown.Slugify(feature),
			Title:   feature,
			URL:     a.matrixURL,
			Snippet: strings.Join(cells[1:], " | "),
			Source:  a.Name(),
		})
	}
	return hits
}

func splitTableRow(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, ":- ") != "" {
			return false
		}
	}
	return true
}

func isHeaderRow(cells []string) bool {
	first := strings.ToLower(cells[0])
	return first == "feature" || first == "class" || first == "name"
}
