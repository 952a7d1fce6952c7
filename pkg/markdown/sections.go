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

package markdown

import "strings"

// Section is a heading-delimited slice of a Markdown body.
type Section struct {
	Title     string
	Level     int // heading level, 2..4
	StartLine int // zero-based line of the heading within the body
	EndLine   int // exclusive; line of the next heading of level <= Level
	Body      string
}

// headingLevel returns the ATX heading level of a line, or 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// FirstHeading returns the text of the first `# ` heading, or "".
func FirstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// FirstParagraph returns the first non-heading, non-empty line outside of
// fenced code blocks, or "".
func FirstParagraph(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return ""
}

// CountSnippets counts fenced code blocks (pairs of ``` markers).
func CountSnippets(body string) int {
	fences := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fences++
		}
	}
	return fences / 2
}

// SplitSections scans body lines sequentially and returns one Section per
// level 2-4 heading. A section closes at the next heading of equal or
// lesser level (or at a level-1 heading), exclusive.
func SplitSections(body string) []Section {
	lines := strings.Split(body, "\n")

	var sections []Section
	for i, line := range lines {
		level := headingLevel(strings.TrimRight(line, "\r"))
		if level < 2 || level > 4 {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if l := headingLevel(strings.TrimRight(lines[j], "\r")); l > 0 && l <= level {
				end = j
				break
			}
		}
		title := strings.TrimSpace(strings.TrimRight(line, "\r")[level+1:])
		sections = append(sections, Section{
			Title:     title,
			Level:     level,
			StartLine: i,
			EndLine:   end,
			Body:      strings.Join(lines[i+1:end], "\n"),
		})
	}
	return sections
}

// Slugify lowercases a title and replaces non-alphanumeric runs with '-'.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
