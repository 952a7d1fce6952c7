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
	"strconv"
	"strings"
	"time"
)

const articlesPrefix = "dj-"

// ArticlesAdapter searches a third-party article site exposing a JSON
// search endpoint (`GET <base>/search.json?q=`). Articles change
// rarely, so responses are cached for a day by default.
type ArticlesAdapter struct {
	client  *http.Client
	cache   *ttlCache
	baseURL string
	ttl     time.Duration
}

var _ Adapter = (*ArticlesAdapter)(nil)

func NewArticlesAdapter(baseURL string, timeout, ttl time.Duration) *ArticlesAdapter {
	if baseURL == "" {
		baseURL = "https://thedevjournal.com"
	}
	return &ArticlesAdapter{
		client:  newHTTPClient(timeout),
		cache:   newTTLCache(),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
	}
}

func (a *ArticlesAdapter) Name() string     { return "articles" }
func (a *ArticlesAdapter) IDPrefix() string { return articlesPrefix }

type articleItem struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

func (a *ArticlesAdapter) Search(ctx context.Context, query string) ([]Hit, error) {
	key := cacheKey("search", query)
	if hits, ok := a.cache.get(key); ok {
		return hits, nil
	}

	var items []articleItem
	if err := a.getJSON(ctx, "/search.json?q="+url.QueryEscape(query), &items); err != nil {
		return nil, fmt.Errorf("article search: %w", err)
	}

	hits := make([]Hit, 0, len(items))
	for _, item := range items {
		u := item.URL
		if strings.HasPrefix(u, "/") {
			u = a.baseURL + u
		}
		hits = append(hits, Hit{
			ID:      articlesPrefix + strconv.Itoa(item.ID),
			Title:   sanitizeHTML(item.Title),
			URL:     u,
			Snippet: truncateSnippet(sanitizeHTML(item.Excerpt), 240),
			Source:  a.Name(),
		})
	}
	a.cache.set(key, hits, a.ttl)
	return hits, nil
}

func (a *ArticlesAdapter) GetByID(ctx context.Context, id string) (string, string, string, error) {
	articleID := strings.TrimPrefix(id, articlesPrefix)

	var item articleItem
	if err := a.getJSON(ctx, "/articles/"+url.PathEscape(articleID)+".json", &item); err != nil {
		return "", "", "", fmt.Errorf("article fetch: %w", err)
	}
	u := item.URL
	if strings.HasPrefix(u, "/") {
		u = a.baseURL + u
	}
	return sanitizeHTML(item.Title), sanitizeHTML(item.Content), u, nil
}

func (a *ArticlesAdapter) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if looksLikeHTML(body) {
		return errors.New("non-JSON answer")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unparsable payload: %w", err)
	}
	return nil
}
