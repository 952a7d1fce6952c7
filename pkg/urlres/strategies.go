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

package urlres

import (
	"regexp"
	"strings"
)

var (
	loioPattern = regexp.MustCompile(`<!--\s*loio([0-9a-f]{32})\s*-->`)
	uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

// registerDefaults installs the built-in library registry.
func (r *Resolver) registerDefaults() {
	r.Register("/sapui5", Config{
		BaseURL: "https://ui5.sap.com",
		Anchor:  AnchorGitHub,
	}, topicIDStrategy)

	r.Register("/openui5-api", Config{
		BaseURL: "https://sdk.openui5.org",
	}, apiReferenceStrategy)

	r.Register("/openui5-samples", Config{
		BaseURL: "https://ui5.sap.com",
	}, sampleStrategy)

	r.Register("/wdi5", Config{
		BaseURL: "https://ui5-community.github.io/wdi5",
		Anchor:  AnchorDocsify,
	}, docsifyStrategy)

	r.Register("/cap", Config{
		BaseURL:     "https://cap.cloud.sap/docs",
		PathPattern: "/{file}",
		Anchor:      AnchorGitHub,
	}, nil)

	r.Register("/cloud-sdk-js", Config{
		BaseURL:     "https://sap.github.io/cloud-sdk/docs/js",
		PathPattern: "/{file}",
		Anchor:      AnchorGitHub,
	}, nil)

	r.Register("/cloud-sdk-java", Config{
		BaseURL:     "https://sap.github.io/cloud-sdk/docs/java",
		PathPattern: "/{file}",
		Anchor:      AnchorGitHub,
	}, nil)

	// ABAP keyword documentation, on-premise and cloud flavors.
	r.Register("/abap-docs-758", Config{
		BaseURL: "https://help.sap.com/doc/abapdocu_758_index_htm/7.58/en-US",
	}, abapStrategy)
	r.Register("/abap-docs-cloud", Config{
		BaseURL: "https://help.sap.com/doc/abapdocu_cp_index_htm/CLOUD/en-US",
	}, abapStrategy)
}

// topicIDStrategy resolves pages carrying a stable topic identifier:
// a loio comment in the content or a UUID in the filename.
func topicIDStrategy(relFile, content string, cfg Config) string {
	if m := loioPattern.FindStringSubmatch(content); m != nil {
		return cfg.BaseURL + "/#/topic/" + m[1]
	}
	if m := uuidPattern.FindString(relFile); m != "" {
		return cfg.BaseURL + "/#/topic/" + strings.ReplaceAll(m, "-", "")
	}
	return ""
}

// apiReferenceStrategy extracts namespace.ShortName from a source path of
// the form src/<lib>/src/<namespace path>/<ShortName>.js.
func apiReferenceStrategy(relFile, content string, cfg Config) string {
	name, ok := strings.CutSuffix(relFile, ".js")
	if !ok {
		return ""
	}
	// Drop the src/<lib>/src/ prefix when present.
	parts := strings.Split(name, "/")
	for len(parts) > 0 && (parts[0] == "src" || strings.Contains(parts[0], ".")) {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return ""
	}
	return cfg.BaseURL + "/#/api/" + strings.Join(parts, ".")
}

// sampleStrategy maps a demokit sample path to the entity browser.
// Expected path shape: .../<Control>/sample/<SampleName>/...
func sampleStrategy(relFile, content string, cfg Config) string {
	parts := strings.Split(relFile, "/")
	for i, p := range parts {
		if p == "sample" && i > 0 && i+1 < len(parts) {
			return cfg.BaseURL + "/entity/" + parts[i-1] + "/sample/" + parts[i+1]
		}
	}
	return ""
}

// docsifyStrategy builds <base>/#/<section>/<id> from front-matter id,
// slug, or the filename.
func docsifyStrategy(relFile, content string, cfg Config) string {
	id := preferredID(relFile, content)
	if id == "" {
		return ""
	}
	if section := sectionOf(relFile); section != "" {
		return cfg.BaseURL + "/#/" + section + "/" + id
	}
	return cfg.BaseURL + "/#/" + id
}

// abapStrategy maps a keyword-doc filename to <base>/<filename>.html.
func abapStrategy(relFile, content string, cfg Config) string {
	base := relFile
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".md")
	base = strings.TrimSuffix(base, ".html")
	if base == "" {
		return ""
	}
	return cfg.BaseURL + "/" + strings.ToLower(base) + ".html"
}
