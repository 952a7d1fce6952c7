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

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sapdocs "github.com/sap-docs/mcp-server"
	"github.com/sap-docs/mcp-server/pkg/logger"
	"github.com/sap-docs/mcp-server/pkg/prompts"
	"github.com/sap-docs/mcp-server/pkg/tools"
)

// ProtocolVersion is the fixed protocol string advertised on
// initialize.
const ProtocolVersion = "2025-07-09"

// ServerName labels the service in initialize and health responses.
const ServerName = "sapdocs"

// Dispatcher routes JSON-RPC methods for one session. Requests on a
// single session are handled in arrival order by the caller.
type Dispatcher struct {
	tools  *tools.Registry
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher over the tool registry.
func NewDispatcher(reg *tools.Registry) *Dispatcher {
	return &Dispatcher{
		tools:  reg,
		logger: logger.GetLogger(),
	}
}

// Dispatch handles one request. It returns nil for notifications.
func (d *Dispatcher) Dispatch(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	if req.JSONRPC != "2.0" || req.Method == "" {
		resp := errorResponse(req.ID, InvalidRequest, "invalid request envelope")
		return &resp
	}

	var resp JSONRPCResponse
	switch req.Method {
	case "initialize":
		resp = d.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "ping":
		resp = successResponse(req.ID, map[string]any{})
	case "tools/list":
		resp = successResponse(req.ID, map[string]any{"tools": d.tools.List()})
	case "tools/call":
		resp = d.handleToolCall(ctx, req)
	case "prompts/list":
		resp = successResponse(req.ID, map[string]any{"prompts": prompts.List()})
	case "prompts/get":
		resp = d.handlePromptGet(req)
	default:
		resp = errorResponse(req.ID, MethodNotFound, "method not found: "+req.Method)
	}

	if req.IsNotification() {
		return nil
	}
	return &resp
}

func (d *Dispatcher) handleInitialize(req *JSONRPCRequest) JSONRPCResponse {
	return successResponse(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":   map[string]any{"listChanged": false},
			"prompts": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    ServerName,
			"version": sapdocs.Version,
		},
	})
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (d *Dispatcher) handleToolCall(ctx context.Context, req *JSONRPCRequest) JSONRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, InvalidParams, "params must carry a tool name and arguments")
	}

	result, err := d.tools.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			return errorResponse(req.ID, InvalidParams, verr.Error())
		}
		d.logger.Error("tool execution failed", "tool", params.Name, "error", err)
		return errorResponse(req.ID, InternalError, "tool execution failed")
	}

	payload := map[string]any{
		"content": []map[string]any{{"type": "text", "text": result.Content}},
		"isError": result.IsError,
	}
	if result.Structured != nil {
		payload["structuredContent"] = result.Structured
	}
	return successResponse(req.ID, payload)
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

func (d *Dispatcher) handlePromptGet(req *JSONRPCRequest) JSONRPCResponse {
	var params promptGetParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return errorResponse(req.ID, InvalidParams, "params must carry a prompt name")
	}

	text, err := prompts.Get(params.Name, params.Arguments)
	if err != nil {
		return errorResponse(req.ID, InvalidParams, err.Error())
	}
	return successResponse(req.ID, map[string]any{
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": map[string]any{"type": "text", "text": text},
			},
		},
	})
}
