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

// Package markdown holds the small Markdown helpers shared by the
// harvester, the URL resolver and the fetcher: front-matter parsing,
// heading scans, section splitting and slug generation.
package markdown

import "strings"

// FrontMatter is the parsed YAML front-matter of a document. Values are
// scalars; single-level sequences are joined under their key as a slice.
type FrontMatter struct {
	Fields map[string]string
	Lists  map[string][]string
}

// Get returns a scalar field, or "".
func (fm FrontMatter) Get(key string) string {
	if fm.Fields == nil {
		return ""
	}
	return fm.Fields[key]
}

// ParseFrontMatter splits content into front-matter and body.
//
// Only a minimal YAML subset is understood: `key: value` scalars (quoted
// or bare) and single-level `- item` sequences. Anything malformed yields
// an empty front-matter and the full content as body; this function never
// fails.
func ParseFrontMatter(content string) (FrontMatter, string) {
	fm := FrontMatter{}

	rest, ok := strings.CutPrefix(content, "---")
	if !ok {
		return fm, content
	}
	// The delimiter must be its own line.
	rest, ok = strings.CutPrefix(strings.TrimPrefix(rest, "\r"), "\n")
	if !ok {
		return fm, content
	}

	head, body, ok := cutFrontMatterEnd(rest)
	if !ok {
		return fm, content
	}

	fm.Fields = make(map[string]string)
	var listKey string
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "- ") && listKey != "" {
			if fm.Lists == nil {
				fm.Lists = make(map[string][]string)
			}
			fm.Lists[listKey] = append(fm.Lists[listKey], unquote(strings.TrimPrefix(trimmed, "- ")))
			continue
		}
		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if value == "" {
			// Potential sequence start.
			listKey = key
			continue
		}
		listKey = ""
		fm.Fields[key] = unquote(value)
	}
	return fm, body
}

// cutFrontMatterEnd finds the closing --- line.
func cutFrontMatterEnd(s string) (head, body string, ok bool) {
	for i := 0; i < len(s); {
		lineEnd := strings.IndexByte(s[i:], '\n')
		var line string
		next := len(s)
		if lineEnd >= 0 {
			line = s[i : i+lineEnd]
			next = i + lineEnd + 1
		} else {
			line = s[i:]
		}
		if strings.TrimSpace(strings.TrimRight(line, "\r")) == "---" {
			return s[:i], s[next:], true
		}
		i = next
	}
	return "", "", false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
