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

package tools

import (
	"context"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/catalog"
)

// FetchTool resolves an identifier to full document text.
type FetchTool struct {
	fetcher *catalog.Fetcher
}

var _ Tool = (*FetchTool)(nil)

func NewFetchTool(fetcher *catalog.Fetcher) *FetchTool {
	return &FetchTool{fetcher: fetcher}
}

type fetchArgs struct {
	ID string `json:"id" jsonschema:"description=Document identifier from a search hit,required"`
}

// fetchPayload is the structured fetch response.
type fetchPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

func (t *FetchTool) GetName() string { return "fetch" }

func (t *FetchTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        t.GetName(),
		Description: "Fetch the full content of a document, section or external post by identifier.",
		InputSchema: schemaFor(&fetchArgs{}),
	}
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var a fetchArgs
	if err := decodeArgs(args, &a); err != nil {
		return ToolResult{}, err
	}
	if strings.TrimSpace(a.ID) == "" {
		return ToolResult{}, newValidationError("id", "must not be empty")
	}

	res, err := t.fetcher.Fetch(ctx, a.ID)
	if err != nil {
		return ToolResult{}, err
	}
	payload := fetchPayload{ID: res.ID, Text: res.Content, URL: res.URL}
	return ToolResult{Content: res.Content, Structured: payload}, nil
}
