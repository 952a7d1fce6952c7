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

const communityPrefix = "community-"

// CommunityAdapter searches the SAP community forum through its LiQL
// search API. The endpoint sits behind bot protection and occasionally
// answers with an HTML challenge page; the adapter makes exactly one
// attempt and surfaces any non-JSON answer as an error for the caller
// to degrade on.
type CommunityAdapter struct {
	client  *http.Client
	cache   *ttlCache
	baseURL string
	ttl     time.Duration
}

var _ Adapter = (*CommunityAdapter)(nil)

// NewCommunityAdapter builds the community adapter. baseURL defaults to
// the public forum when empty.
func NewCommunityAdapter(baseURL string, timeout, ttl time.Duration) *CommunityAdapter {
	if baseURL == "" {
		baseURL = "https://community.sap.com"
	}
	return &CommunityAdapter{
		client:  newHTTPClient(timeout),
		cache:   newTTLCache(),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
	}
}

func (a *CommunityAdapter) Name() string     { return "community" }
func (a *CommunityAdapter) IDPrefix() string { return communityPrefix }

type liqlResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []struct {
			ID       json.Number `json:"id"`
			Subject  string      `json:"subject"`
			Snippet  string      `json:"search_snippet"`
			ViewHref string      `json:"view_href"`
			Body     string      `json:"body"`
		} `json:"items"`
	} `json:"data"`
}

func (a *CommunityAdapter) Search(ctx context.Context, query string) ([]Hit, error) {
	key := cacheKey("search", query)
	if hits, ok := a.cache.get(key); ok {
		return hits, nil
	}

	liql := fmt.Sprintf(
		"SELECT id, subject, search_snippet, view_href FROM messages WHERE subject MATCHES '%s' LIMIT 10",
		strings.ReplaceAll(query, "'", ""))
	var resp liqlResponse
	if err := a.getJSON(ctx, "/api/2.0/search?q="+url.QueryEscape(liql), &resp); err != nil {
		return nil, fmt.Errorf("community search: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		hits = append(hits, Hit{
			ID:      communityPrefix + item.ID.String(),
			Title:   sanitizeHTML(item.Subject),
			URL:     item.ViewHref,
			Snippet: truncateSnippet(sanitizeHTML(item.Snippet), 240),
			Source:  a.Name(),
		})
	}
	a.cache.set(key, hits, a.ttl)
	return hits, nil
}

func (a *CommunityAdapter) GetByID(ctx context.Context, id string) (string, string, string, error) {
	messageID := strings.TrimPrefix(id, communityPrefix)
	liql := fmt.Sprintf(
		"SELECT id, subject, body, view_href FROM messages WHERE id = '%s'",
		strings.ReplaceAll(messageID, "'", ""))
	var resp liqlResponse
	if err := a.getJSON(ctx, "/api/2.0/search?q="+url.QueryEscape(liql), &resp); err != nil {
		return "", "", "", fmt.Errorf("community fetch: %w", err)
	}
	if len(resp.Data.Items) == 0 {
		return "", "", "", nil
	}
	item := resp.Data.Items[0]
	return sanitizeHTML(item.Subject), sanitizeHTML(item.Body), item.ViewHref, nil
}

// getJSON performs one GET and decodes a JSON body. Every failure mode
// (network, status, challenge page, bad JSON) comes back as an error;
// the adapter never retries.
func (a *CommunityAdapter) getJSON(ctx context.Context, path string, v any) error {
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
		return errors.New("non-JSON answer, likely a challenge page")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unparsable payload: %w", err)
	}
	return nil
}
