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
	"regexp"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/catalog"
)

var (
	extendPattern = regexp.MustCompile(`\.extend\(\s*["']([A-Za-z0-9_.]+)["']`)
	keyPattern    = regexp.MustCompile(`^\s*["']?([A-Za-z_$][A-Za-z0-9_$]*)["']?\s*:`)
)

// JSDocExtractor indexes framework control sources: one api-reference
// document per file, with properties, events and aggregations pulled out
// of the control's metadata block.
type JSDocExtractor struct{}

var _ Extractor = (*JSDocExtractor)(nil)

func (e *JSDocExtractor) Extract(libraryID, relFile string, content []byte) ([]catalog.Document, error) {
	src := string(content)

	// Only modules with both an extension marker and a metadata block
	// describe a control.
	m := extendPattern.FindStringSubmatch(src)
	block := metadataBlock(src)
	if m == nil || block == "" {
		return nil, nil
	}
	full := m[1]
	namespace, control := splitControlName(full)

	meta := &catalog.ControlMeta{
		Control:      control,
		Namespace:    namespace,
		Properties:   memberKeys(block, "properties"),
		Events:       memberKeys(block, "events"),
		Aggregations: memberKeys(block, "aggregations"),
	}

	doc := catalog.Document{
		ID:          libraryID + "/" + strings.TrimSuffix(relFile, ".js"),
		Library:     libraryID,
		Kind:        catalog.KindAPIReference,
		Title:       full,
		Description: classDescription(src),
		RelFile:     relFile,
		Meta:        meta,
	}
	return []catalog.Document{doc}, nil
}

func splitControlName(full string) (namespace, control string) {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}

// metadataBlock returns the brace-balanced body of the first
// `metadata : { ... }` object, or "".
func metadataBlock(src string) string {
	idx := strings.Index(src, "metadata")
	if idx < 0 {
		return ""
	}
	return balancedBraces(src[idx:])
}

// memberKeys returns the top-level keys of a named sub-object, e.g. the
// property names under `properties : { ... }`.
func memberKeys(block, member string) []string {
	idx := strings.Index(block, member)
	if idx < 0 {
		return nil
	}
	body := balancedBraces(block[idx:])
	if body == "" {
		return nil
	}

	var keys []string
	depth := 0
	for _, line := range strings.Split(body, "\n") {
		if depth == 0 {
			if m := keyPattern.FindStringSubmatch(line); m != nil {
				keys = append(keys, m[1])
			}
		}
		for _, r := range line {
			switch r {
			case '{', '[', '(':
				depth++
			case '}', ']', ')':
				depth--
			}
		}
	}
	return keys
}

// balancedBraces returns the content between the first '{' in s and its
// matching '}', exclusive. String literals are skipped so braces inside
// them do not unbalance the scan.
func balancedBraces(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i]
			}
		}
	}
	return ""
}

// classDescription returns the first prose line of the first jsdoc block.
func classDescription(src string) string {
	start := strings.Index(src, "/**")
	if start < 0 {
		return ""
	}
	end := strings.Index(src[start:], "*/")
	if end < 0 {
		return ""
	}
	for _, line := range strings.Split(src[start:start+end], "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		line = strings.TrimSpace(strings.TrimPrefix(line, "/**"))
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		return line
	}
	return ""
}
