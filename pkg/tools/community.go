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
	"encoding/json"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/live"
)

// CommunitySearchTool searches the community forum only, skipping local
// ranking entirely.
type CommunitySearchTool struct {
	adapter live.Adapter
}

var _ Tool = (*CommunitySearchTool)(nil)

func NewCommunitySearchTool(adapter live.Adapter) *CommunitySearchTool {
	return &CommunitySearchTool{adapter: adapter}
}

type communityArgs struct {
	Query string `json:"query" jsonschema:"description=Free-text forum query,required"`
}

func (t *CommunitySearchTool) GetName() string { return "community_search" }

func (t *CommunitySearchTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        t.GetName(),
		Description: "Search SAP community forum posts.",
		InputSchema: schemaFor(&communityArgs{}),
	}
}

func (t *CommunitySearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var a communityArgs
	if err := decodeArgs(args, &a); err != nil {
		return ToolResult{}, err
	}
	if strings.TrimSpace(a.Query) == "" {
		return ToolResult{}, newValidationError("query", "must not be empty")
	}

	hits := []live.Hit{}
	if t.adapter != nil {
		if got, err := t.adapter.Search(ctx, a.Query); err == nil && got != nil {
			hits = got
		}
	}

	payload := struct {
		Results []live.Hit `json:"results"`
	}{Results: hits}
	text, err := json.Marshal(payload)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: string(text), Structured: payload}, nil
}
