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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const helpPrefix = "sap-help-"

// HelpPortalAdapter searches the help portal's document search service.
type HelpPortalAdapter struct {
	client  *http.Client
	cache   *ttlCache
	baseURL string
	ttl     time.Duration
}

var _ Adapter = (*HelpPortalAdapter)(nil)

func NewHelpPortalAdapter(baseURL string, timeout, ttl time.Duration) *HelpPortalAdapter {
	if baseURL == "" {
		baseURL = "https://help.sap.com"
	}
	return &HelpPortalAdapter{
		client:  newHTTPClient(timeout),
		cache:   newTTLCache(),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
	}
}

func (a *HelpPortalAdapter) Name() string     { return "sap-help" }
func (a *HelpPortalAdapter) IDPrefix() string { return helpPrefix }

type helpSearchResponse struct {
	Data struct {
		Results []struct {
			Loio    string `json:"loio"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			URL     string `json:"url"`
		} `json:"results"`
	} `json:"data"`
}

func (a *HelpPortalAdapter) Search(ctx context.Context, query string) ([]Hit, error) {
	key := cacheKey("search", query)
	if hits, ok := a.cache.get(key); ok {
		return hits, nil
	}

	endpoint := a.baseURL + "/http.svc/elasticsearch?area=content&language=en-US&state=PRODUCTION&transtype=standard,html&to=19&q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("help portal search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("help portal search: read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("help portal search: unexpected status %d", resp.StatusCode)
	}
	if looksLikeHTML(body) {
		return nil, errors.New("help portal search: non-JSON answer")
	}
	var parsed helpSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("help portal search: unparsable payload: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Data.Results))
	for _, r := range parsed.Data.Results {
		u := r.URL
		if strings.HasPrefix(u, "/") {
			u = a.baseURL + u
		}
		hits = append(hits, Hit{
			ID:      helpPrefix + r.Loio,
			Title:   sanitizeHTML(r.Title),
			URL:     u,
			Snippet: truncateSnippet(sanitizeHTML(r.Snippet), 240),
			Source:  a.Name(),
		})
	}
	a.cache.set(key, hits, a.ttl)
	return hits, nil
}

// GetByID fetches the document page and reduces it to plain text. Help
// portal pages carry heavy chrome; the sanitized body is still the best
// full-text view the portal offers without an authenticated API.
func (a *HelpPortalAdapter) GetByID(ctx context.Context, id string) (string, string, string, error) {
	loio := strings.TrimPrefix(id, helpPrefix)
	pageURL := a.baseURL + "/docs/search?q=" + url.QueryEscape(loio)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := a.client.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("help portal fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", "", fmt.Errorf("help portal fetch: read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("help portal fetch: unexpected status %d", resp.StatusCode)
	}
	text := truncateSnippet(sanitizeHTML(string(body)), 4000)
	return loio, text, pageURL, nil
}
