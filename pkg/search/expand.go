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

// Package search implements query expansion, hybrid scoring over the
// full-text index, online fan-out and reciprocal-rank fusion.
package search

import (
	"regexp"
	"strings"
)

// tokenSynonyms substitutes single tokens both ways.
var tokenSynonyms = map[string]string{
	"wizard":      "multi-step process",
	"odata":       "data protocol",
	"i18n":        "internationalization",
	"auth":        "authentication",
	"fe":          "fiori elements",
	"ui":          "user interface",
	"xsuaa":       "authorization service",
	"cf":          "cloud foundry",
	"hana":        "sap hana database",
	"amdp":        "abap managed database procedure",
	"rap":         "restful application programming",
	"cds":         "core data services",
	"mta":         "multitarget application",
	"destination": "remote service configuration",
	"annotation":  "metadata annotation",
	"fragment":    "reusable view fragment",
	"routing":     "navigation routing",
}

// phraseAliases rewrite whole sub-phrases. Ordered so expansion output
// is stable across invocations.
var phraseAliases = []struct{ phrase, alias string }{
	{"cds entity", "entity definition"},
	{"cap service", "service definition"},
	{"value help", "value help dialog"},
	{"smart table", "smart table control"},
	{"draft handling", "draft enabled entity"},
	{"side effects", "side effect annotation"},
	{"unit test", "test automation"},
	{"abap sql", "open sql"},
}

var dottedIdent = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*(\.[a-zA-Z][a-zA-Z0-9]*)+$`)

// Expand produces an ordered, duplicate-free list of query variants. The
// first variant is always the trimmed original; the output is stable
// across invocations.
func Expand(query string) []string {
	original := strings.Join(strings.Fields(query), " ")
	if original == "" {
		return nil
	}

	var variants []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.Join(strings.Fields(v), " ")
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, v)
	}

	// 1. Raw trimmed query.
	add(original)

	lower := strings.ToLower(original)
	tokens := strings.Fields(lower)

	// 2. Token-level synonym substitutions.
	for i, tok := range tokens {
		if syn, ok := tokenSynonyms[tok]; ok {
			sub := make([]string, len(tokens))
			copy(sub, tokens)
			sub[i] = syn
			add(strings.Join(sub, " "))
		}
	}

	// 3. Namespace heuristics for dotted identifiers.
	for _, tok := range tokens {
		if dottedIdent.MatchString(tok) {
			i := strings.LastIndexByte(tok, '.')
			add(tok[i+1:]) // short name
			add(tok[:i])   // namespace prefix
		}
	}

	// 4. Compound splits: camelCase and dotted tokens.
	for _, tok := range tokens {
		if split := splitCompound(tok); split != tok {
			add(split)
		}
	}
	if split := splitCompound(original); !strings.EqualFold(split, original) {
		add(strings.ToLower(split))
	}

	// 5. Domain aliases on sub-phrases.
	for _, a := range phraseAliases {
		if strings.Contains(lower, a.phrase) {
			add(strings.ReplaceAll(lower, a.phrase, a.alias))
		}
	}

	return variants
}

// splitCompound breaks camelCase humps and dots into spaces.
func splitCompound(tok string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range tok {
		switch {
		case r == '.' || r == '/' || r == '_':
			b.WriteByte(' ')
			prevLower = false
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
