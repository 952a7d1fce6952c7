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

// FeatureMatrixTool answers ABAP availability questions from the
// feature-matrix adapter alone.
type FeatureMatrixTool struct {
	adapter live.Adapter
}

var _ Tool = (*FeatureMatrixTool)(nil)

func NewFeatureMatrixTool(adapter live.Adapter) *FeatureMatrixTool {
	return &FeatureMatrixTool{adapter: adapter}
}

type featureMatrixArgs struct {
	Query string `json:"query" jsonschema:"description=Feature or class name to look up,required"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of rows (default 20)"`
}

func (t *FeatureMatrixTool) GetName() string { return "feature_matrix" }

func (t *FeatureMatrixTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        t.GetName(),
		Description: "Look up ABAP language feature availability across on-premise and cloud flavors.",
		InputSchema: schemaFor(&featureMatrixArgs{}),
	}
}

func (t *FeatureMatrixTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	var a featureMatrixArgs
	if err := decodeArgs(args, &a); err != nil {
		return ToolResult{}, err
	}
	if strings.TrimSpace(a.Query) == "" {
		return ToolResult{}, newValidationError("query", "must not be empty")
	}
	limit := a.Limit
	if limit <= 0 {
		limit = 20
	}

	// A nil adapter means live search is off; the tool stays listed and
	// answers with an empty result set.
	hits := []live.Hit{}
	if t.adapter != nil {
		if got, err := t.adapter.Search(ctx, a.Query); err == nil && got != nil {
			hits = got
		}
	}
	if len(hits) > limit {
		hits = hits[:limit]
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
