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

package ingest

import (
	"strings"

	"github.com/sap-docs/mcp-server/pkg/catalog"
)

// SampleExtractor indexes demokit sample files. The owning control is
// derived from the path segment preceding "sample".
type SampleExtractor struct{}

var _ Extractor = (*SampleExtractor)(nil)

func (e *SampleExtractor) Extract(libraryID, relFile string, content []byte) ([]catalog.Document, error) {
	control, sample := sampleCoordinates(relFile)
	if control == "" {
		return nil, nil
	}

	role, description := sampleRole(relFile)
	namespace, short := splitControlName(control)
	doc := catalog.Document{
		ID:          libraryID + "/" + strings.TrimSuffix(relFile, pathExt(relFile)),
		Library:     libraryID,
		Kind:        catalog.KindSample,
		Title:       control + " sample: " + sample + " (" + role + ")",
		Description: description,
		RelFile:     relFile,
		Snippets:    countSamplePatterns(string(content)),
		Meta: &catalog.ControlMeta{
			Control:   short,
			Namespace: namespace,
			Keywords:  []string{sample, role},
		},
	}
	return []catalog.Document{doc}, nil
}

// sampleCoordinates finds the <Control>/sample/<Name> triple in a path.
func sampleCoordinates(relFile string) (control, sample string) {
	parts := strings.Split(relFile, "/")
	for i, p := range parts {
		if p == "sample" && i > 0 && i+1 < len(parts) {
			return parts[i-1], parts[i+1]
		}
	}
	return "", ""
}

// sampleRole classifies a sample file by suffix.
func sampleRole(relFile string) (role, description string) {
	lower := strings.ToLower(relFile)
	switch {
	case strings.HasSuffix(lower, "component.js"):
		return "component", "Sample component wiring"
	case strings.HasSuffix(lower, ".controller.js"):
		return "controller", "Controller logic for the sample"
	case strings.HasSuffix(lower, ".js"):
		return "controller", "Script for the sample"
	case strings.HasSuffix(lower, ".view.xml"), strings.HasSuffix(lower, ".fragment.xml"), strings.HasSuffix(lower, ".xml"):
		return "view", "XML view showing the control in markup"
	case strings.HasSuffix(lower, "manifest.json"):
		return "manifest", "Application descriptor for the sample"
	case strings.HasSuffix(lower, ".json"):
		return "model", "JSON model data for the sample"
	case strings.HasSuffix(lower, ".html"):
		return "page", "Standalone HTML page hosting the sample"
	default:
		return "file", "Supporting sample file"
	}
}

// countSamplePatterns counts syntactic features standing in for code
// snippets: function definitions, event handler bindings, XML tag
// starts, binding expressions and script tags.
func countSamplePatterns(src string) int {
	n := strings.Count(src, "function") +
		strings.Count(src, "press=") +
		strings.Count(src, "<mvc:") +
		strings.Count(src, "{/") +
		strings.Count(src, "<script")
	return n
}

func pathExt(relFile string) string {
	if i := strings.LastIndexByte(relFile, '.'); i > strings.LastIndexByte(relFile, '/') {
		return relFile[i:]
	}
	return ""
}
