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

// Package tools declares the operation surface: search, fetch, the
// feature-matrix lookup and community search, each with a declared
// input schema and argument validation ahead of dispatch.
package tools

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// ToolInfo describes one tool for the tools-list operation.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema,omitempty"`
}

// ToolResult is the outcome of one tool execution. Structured is the
// preferred payload; Content is its textual rendering.
type ToolResult struct {
	Content    string `json:"content,omitempty"`
	Structured any    `json:"structured,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Tool is one executable operation.
type Tool interface {
	GetInfo() ToolInfo

	Execute(ctx context.Context, args map[string]any) (ToolResult, error)

	GetName() string
}

// ValidationError reports a missing or malformed argument. It is
// surfaced synchronously and never retried.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Message)
}

func newValidationError(param, message string) *ValidationError {
	return &ValidationError{Param: param, Message: message}
}

// decodeArgs maps loosely-typed tool arguments onto a typed struct.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return newValidationError("arguments", err.Error())
	}
	return nil
}

// schemaFor reflects a JSON schema from an argument struct.
func schemaFor(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	return r.Reflect(v)
}
