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

package search

import (
	"sort"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/index"
)

// Scoring weights.
const (
	scoreTitleFull     = 100
	scoreTitlePrefix   = 60
	scoreTitleSubstr   = 30
	scoreKeywordToken  = 15
	scoreKeywordCap    = 60
	scoreControlMatch  = 80
	scoreFuzzyTitle    = 20
	scoreExcerpt       = 10
	scoreSectionBias   = 5
	scoreContextNudge  = -25
	fuzzyMinTokenLen   = 4
	fuzzyMaxDistance   = 2
)

// Hit is one ranked search result.
type Hit struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Library   string         `json:"library,omitempty"`
	Kind      catalog.Kind   `json:"kind,omitempty"`
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
	Excerpt   string         `json:"excerpt,omitempty"`
	URL       string         `json:"url,omitempty"`
	Source    string         `json:"source"`
}

// contextVocabularies associates query vocabulary with libraries. A
// query firmly inside one context penalizes candidates from another.
var contextVocabularies = []struct {
	name      string
	terms     []string
	libraries []string
}{
	{
		name:      "cap",
		terms:     []string{"cds", "entity", "srv", "cap", "annotate", "odata", "draft"},
		libraries: []string{"/cap"},
	},
	{
		name:      "ui5",
		terms:     []string{"control", "view", "fragment", "binding", "fiori", "ui5", "component", "manifest"},
		libraries: []string{"/sapui5", "/openui5-api", "/openui5-samples", "/wdi5"},
	},
	{
		name:      "abap",
		terms:     []string{"abap", "report", "internal", "itab", "amdp", "rap"},
		libraries: []string{"/abap-docs-758", "/abap-docs-cloud"},
	},
	{
		name:      "cloud-sdk",
		terms:     []string{"sdk", "destination", "resilience", "typescript"},
		libraries: []string{"/cloud-sdk-js", "/cloud-sdk-java"},
	},
}

// scoreEntry applies the additive scoring function to one candidate
// against all query variants. Returns the final score with a per-stage
// breakdown.
func scoreEntry(e index.Entry, variants []string) (int, map[string]int) {
	breakdown := make(map[string]int)
	titleLower := strings.ToLower(e.Title)

	// Title match: take the strongest form across variants. Containment
	// runs both ways so a short query finds a long title and a long
	// query still credits an embedded title.
	title := 0
	for _, v := range variants {
		vl := strings.ToLower(v)
		switch {
		case titleLower == vl:
			title = max(title, scoreTitleFull)
		case strings.HasPrefix(titleLower, vl), strings.HasPrefix(vl, titleLower):
			title = max(title, scoreTitlePrefix)
		case strings.Contains(titleLower, vl), strings.Contains(vl, titleLower):
			title = max(title, scoreTitleSubstr)
		}
	}
	if title > 0 {
		breakdown["title"] = title
	}

	// Keyword blob: +15 per distinct matching token, capped.
	if kw := strings.ToLower(e.Keywords); kw != "" {
		seen := make(map[string]bool)
		pts := 0
		for _, v := range variants {
			for _, tok := range strings.Fields(strings.ToLower(v)) {
				if !seen[tok] && strings.Contains(kw, tok) {
					seen[tok] = true
					pts += scoreKeywordToken
				}
			}
		}
		if pts > scoreKeywordCap {
			pts = scoreKeywordCap
		}
		if pts > 0 {
			breakdown["keywords"] = pts
		}
	}

	// Control / namespace exact match.
	for _, v := range variants {
		vl := strings.ToLower(v)
		if (e.Control != "" && vl == strings.ToLower(e.Control)) ||
			(e.Namespace != "" && vl == strings.ToLower(e.Namespace)) {
			breakdown["control"] = scoreControlMatch
			break
		}
	}

	// Fuzzy title match on tokens.
	if fuzzyTitleMatch(titleLower, variants) {
		breakdown["fuzzy"] = scoreFuzzyTitle
	}

	// Excerpt (description) containment.
	if desc := strings.ToLower(e.Description); desc != "" {
		for _, v := range variants {
			if strings.Contains(desc, strings.ToLower(v)) {
				breakdown["excerpt"] = scoreExcerpt
				break
			}
		}
	}

	// Context penalty.
	if penalized(variants, e.Library) {
		breakdown["context"] = scoreContextNudge
	}

	// Section bias: a matching section heading outranks its parent.
	if e.Kind == catalog.KindSection && title > 0 {
		breakdown["section"] = scoreSectionBias
	}

	total := 0
	for _, pts := range breakdown {
		total += pts
	}
	return total, breakdown
}

func fuzzyTitleMatch(titleLower string, variants []string) bool {
	titleTokens := strings.Fields(titleLower)
	for _, v := range variants {
		for _, qt := range strings.Fields(strings.ToLower(v)) {
			if len(qt) < fuzzyMinTokenLen {
				continue
			}
			for _, tt := range titleTokens {
				if len(tt) < fuzzyMinTokenLen {
					continue
				}
				if qt != tt && withinDistance(qt, tt, fuzzyMaxDistance) {
					return true
				}
			}
		}
	}
	return false
}

// penalized reports whether the query sits in one context vocabulary
// while the candidate's library belongs to a different one.
func penalized(variants []string, library string) bool {
	tokens := make(map[string]bool)
	for _, v := range variants {
		for _, t := range strings.Fields(strings.ToLower(v)) {
			tokens[t] = true
		}
	}

	queryContexts := make(map[string]bool)
	candidateContexts := make(map[string]bool)
	for _, vocab := range contextVocabularies {
		for _, term := range vocab.terms {
			if tokens[term] {
				queryContexts[vocab.name] = true
				break
			}
		}
		for _, lib := range vocab.libraries {
			if lib == library {
				candidateContexts[vocab.name] = true
			}
		}
	}
	if len(queryContexts) == 0 || len(candidateContexts) == 0 {
		return false
	}
	for name := range candidateContexts {
		if queryContexts[name] {
			return false
		}
	}
	return true
}

// rankHits sorts hits by descending score with the documented
// tie-breaks: longer title-match prefix first, then identifier order.
func rankHits(hits []Hit, variants []string) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		pi, pj := titlePrefixLen(hits[i].Title, variants), titlePrefixLen(hits[j].Title, variants)
		if pi != pj {
			return pi > pj
		}
		return hits[i].ID < hits[j].ID
	})
}

// titlePrefixLen returns the longest common prefix length between the
// title and any variant, case-folded.
func titlePrefixLen(title string, variants []string) int {
	tl := strings.ToLower(title)
	best := 0
	for _, v := range variants {
		vl := strings.ToLower(v)
		n := 0
		for n < len(tl) && n < len(vl) && tl[n] == vl[n] {
			n++
		}
		if n > best {
			best = n
		}
	}
	return best
}
