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
	"path"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/markdown"
)

// Section emission thresholds. Thin sections add index noise without
// adding retrievable content.
const (
	minSectionBody  = 100
	minSectionTitle = 3
)

// MarkdownExtractor indexes a Markdown guide plus one section document
// per substantial level 2-4 heading.
type MarkdownExtractor struct{}

var _ Extractor = (*MarkdownExtractor)(nil)

func (e *MarkdownExtractor) Extract(libraryID, relFile string, content []byte) ([]catalog.Document, error) {
	fm, body := markdown.ParseFrontMatter(string(content))

	title := fm.Get("title")
	if title == "" {
		title = markdown.FirstHeading(body)
	}
	if title == "" {
		title = titleFromFilename(relFile)
	}

	description := fm.Get("synopsis")
	if description == "" {
		description = fm.Get("description")
	}
	if description == "" {
		description = markdown.FirstParagraph(body)
	}

	id := libraryID + "/" + strings.TrimSuffix(relFile, path.Ext(relFile))
	doc := catalog.Document{
		ID:          id,
		Library:     libraryID,
		Kind:        catalog.KindGuide,
		Title:       title,
		Description: description,
		RelFile:     relFile,
		Snippets:    markdown.CountSnippets(body),
	}
	if tags := fm.Lists["tags"]; len(tags) > 0 {
		doc.Meta = &catalog.ControlMeta{Keywords: tags}
	}

	docs := []catalog.Document{doc}
	for _, s := range markdown.SplitSections(body) {
		if len(strings.TrimSpace(s.Body)) < minSectionBody || len(s.Title) < minSectionTitle {
			continue
		}
		docs = append(docs, catalog.Document{
			ID:          id + "#" + markdown.Slugify(s.Title),
			Library:     libraryID,
			Kind:        catalog.KindSection,
			Title:       s.Title,
			Description: markdown.FirstParagraph(s.Body),
			RelFile:     relFile,
			Snippets:    markdown.CountSnippets(s.Body),
			Parent:      id,
			Level:       s.Level,
			StartLine:   s.StartLine,
		})
	}
	return docs, nil
}

// titleFromFilename derives a readable title from the file name:
// "worklist-template.md" becomes "Worklist Template".
func titleFromFilename(relFile string) string {
	base := path.Base(relFile)
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
