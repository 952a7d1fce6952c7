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

// Package prompts serves the fixed prompt templates exposed over the
// prompts/list and prompts/get operations.
package prompts

import (
	"fmt"
	"regexp"
)

// Argument describes one declared template argument.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt is one named template with declared arguments.
type Prompt struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Arguments   []Argument `json:"arguments,omitempty"`
	Template    string     `json:"-"`
}

var registry = []Prompt{
	{
		Name:        "ui5-control-usage",
		Description: "Walk through using a UI5 control: properties, events, and a minimal XML view snippet.",
		Arguments: []Argument{
			{Name: "control", Description: "Fully-qualified control name, e.g. sap.m.Button", Required: true},
			{Name: "scenario", Description: "What the control should do in the application"},
		},
		Template: "Explain how to use the UI5 control {{control}}.\n" +
			"Scenario: {{scenario}}\n\n" +
			"Search the documentation for {{control}}, list its key properties, events and aggregations, " +
			"and show a minimal XML view snippet plus the matching controller code.",
	},
	{
		Name:        "cap-model-review",
		Description: "Review a CAP data model for naming, draft handling, and service exposure issues.",
		Arguments: []Argument{
			{Name: "model", Description: "CDS model source to review", Required: true},
			{Name: "focus", Description: "Optional focus area, e.g. drafts or authorization"},
		},
		Template: "Review the following CDS model:\n\n{{model}}\n\n" +
			"Focus: {{focus}}\n\n" +
			"Check entity and element naming against CAP conventions, draft enablement, managed aspects, " +
			"and service exposure. Cite the relevant capire documentation for each finding.",
	},
	{
		Name:        "abap-feature-check",
		Description: "Check whether an ABAP language feature or released class is available in a given flavor.",
		Arguments: []Argument{
			{Name: "feature", Description: "Language feature or class name", Required: true},
			{Name: "flavor", Description: "Target flavor: cloud or on-premise"},
		},
		Template: "Is {{feature}} available in ABAP flavor {{flavor}}?\n\n" +
			"Consult the feature matrix and the keyword documentation for {{feature}}, state the minimum " +
			"release, and suggest a released alternative when it is unavailable in the requested flavor.",
	},
}

var placeholder = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// List returns all prompt definitions.
func List() []Prompt {
	out := make([]Prompt, len(registry))
	copy(out, registry)
	return out
}

// Get interpolates a prompt template. Declared arguments missing from
// args, and placeholders for undeclared names, render as empty strings.
func Get(name string, args map[string]string) (string, error) {
	for _, p := range registry {
		if p.Name != name {
			continue
		}
		for _, arg := range p.Arguments {
			if arg.Required && args[arg.Name] == "" {
				return "", fmt.Errorf("missing required argument %q", arg.Name)
			}
		}
		return placeholder.ReplaceAllStringFunc(p.Template, func(m string) string {
			key := placeholder.FindStringSubmatch(m)[1]
			return args[key]
		}), nil
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}
