package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantFields map[string]string
		wantBody   string
	}{
		{
			name:       "no front matter",
			content:    "# Title\nbody",
			wantFields: nil,
			wantBody:   "# Title\nbody",
		},
		{
			name:       "simple scalars",
			content:    "---\nid: locators\nsynopsis: How to locate things\n---\n# Title",
			wantFields: map[string]string{"id": "locators", "synopsis": "How to locate things"},
			wantBody:   "# Title",
		},
		{
			name:       "quoted values",
			content:    "---\ntitle: \"Fiori: Elements\"\nslug: 'fe-intro'\n---\nbody",
			wantFields: map[string]string{"title": "Fiori: Elements", "slug": "fe-intro"},
			wantBody:   "body",
		},
		{
			name:       "unterminated front matter falls through",
			content:    "---\nid: broken\nno closing delimiter",
			wantFields: nil,
			wantBody:   "---\nid: broken\nno closing delimiter",
		},
		{
			name:       "dashes inside body are not a delimiter",
			content:    "body with --- inline",
			wantFields: nil,
			wantBody:   "body with --- inline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := ParseFrontMatter(tt.content)
			assert.Equal(t, tt.wantBody, body)
			for k, v := range tt.wantFields {
				assert.Equal(t, v, fm.Get(k))
			}
			if tt.wantFields == nil {
				assert.Empty(t, fm.Fields)
			}
		})
	}
}

func TestParseFrontMatterSequences(t *testing.T) {
	content := "---\ntags:\n  - ui5\n  - fiori\nid: x\n---\nbody"
	fm, body := ParseFrontMatter(content)
	assert.Equal(t, "body", body)
	assert.Equal(t, "x", fm.Get("id"))
	assert.Equal(t, []string{"ui5", "fiori"}, fm.Lists["tags"])
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Walkthrough", FirstHeading("intro\n# Walkthrough\n## Step 1"))
	assert.Equal(t, "", FirstHeading("## only level two"))
}

func TestFirstParagraph(t *testing.T) {
	body := "# Title\n\n```js\nconst inCode = 1;\n```\n\nThe first real line.\nsecond"
	assert.Equal(t, "The first real line.", FirstParagraph(body))
}

func TestCountSnippets(t *testing.T) {
	body := "```js\na\n```\ntext\n```xml\nb\n```"
	assert.Equal(t, 2, CountSnippets(body))
}

func TestSplitSections(t *testing.T) {
	body := "# Top\nintro\n## Alpha\na1\na2\n### Nested\nn1\n## Beta\nb1"
	sections := SplitSections(body)

	if len(sections) != 3 {
		t.Fatalf("SplitSections() returned %d sections, want 3", len(sections))
	}

	assert.Equal(t, "Alpha", sections[0].Title)
	assert.Equal(t, 2, sections[0].Level)
	// Alpha runs up to (not including) Beta; Nested belongs to it.
	assert.Equal(t, "a1\na2\n### Nested\nn1", sections[0].Body)

	assert.Equal(t, "Nested", sections[1].Title)
	assert.Equal(t, 3, sections[1].Level)
	assert.Equal(t, "n1", sections[1].Body)

	assert.Equal(t, "Beta", sections[2].Title)
	assert.Equal(t, "b1", sections[2].Body)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Column Micro Chart", "column-micro-chart"},
		{"Using OData V4", "using-odata-v4"},
		{"  Spaces  &  Symbols!  ", "spaces-symbols"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
