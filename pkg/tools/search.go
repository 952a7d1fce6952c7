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
	"fmt"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/search"
)

// SearchTool runs the hybrid search pipeline.
type SearchTool struct {
	engine *search.Engine
}

var _ Tool = (*SearchTool)(nil)

func NewSearchTool(engine *search.Engine) *SearchTool {
	return &SearchTool{engine: engine}
}

type searchArgs struct {
	Query          string   `json:"query" jsonschema:"description=Free-text search query,required"`
	K              int      `json:"k,omitempty" jsonschema:"description=Maximum number of hits (default 10; max 50)"`
	IncludeOnline  bool     `json:"includeOnline,omitempty" jsonschema:"description=Also query live sources (community; help portal; articles)"`
	IncludeSamples bool     `json:"includeSamples,omitempty" jsonschema:"description=Include sample documents in the results"`
	Sources        []string `json:"sources,omitempty" jsonschema:"description=Restrict to library identifiers such as /sapui5 or /cap"`
	Flavor         string   `json:"flavor,omitempty" jsonschema:"description=Corpus flavor where applicable; e.g. cloud"`
}

func (t *SearchTool) GetName() string { return "search" }

func (t *SearchTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        t.GetName(),
		Description: "Search SAP documentation: guides, API reference, samples and optionally live sources.",
		InputSchema: schemaFor(&searchArgs{}),
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var a searchArgs
	if err := decodeArgs(args, &a); err != nil {
		return ToolResult{}, err
	}
	if strings.TrimSpace(a.Query) == "" {
		return ToolResult{}, newValidationError("query", "must not be empty")
	}
	if a.K < 0 || a.K > 50 {
		return ToolResult{}, newValidationError("k", "must be between 1 and 50")
	}

	res, err := t.engine.Search(ctx, a.Query, search.Options{
		K:              a.K,
		IncludeOnline:  a.IncludeOnline,
		IncludeSamples: a.IncludeSamples,
		Sources:        a.Sources,
		Flavor:         a.Flavor,
	})
	if err != nil {
		return ToolResult{}, fmt.Errorf("search failed: %w", err)
	}

	text, err := json.Marshal(res)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: string(text), Structured: res}, nil
}
