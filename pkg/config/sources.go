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

package config

import (
	"fmt"
	"strings"
)

// ExtractorKind selects the per-file extractor for a source tree.
type ExtractorKind string

const (
	ExtractorMarkdown ExtractorKind = "markdown"
	ExtractorJSDoc    ExtractorKind = "jsdoc"
	ExtractorSample   ExtractorKind = "sample"
)

// SourceConfig declares one documentation source tree.
type SourceConfig struct {
	// Repo is a human-readable repository label.
	Repo string `yaml:"repo"`

	// Dir is the absolute directory of the checked-out source tree.
	Dir string `yaml:"dir"`

	// Library is the library identifier, with leading slash
	// (e.g. /sapui5, /cap, /wdi5).
	Library string `yaml:"library"`

	// Name is the display name of the library bundle.
	Name string `yaml:"name"`

	// Description describes the bundle in listings.
	Description string `yaml:"description,omitempty"`

	// Include is a doublestar glob selecting files to harvest.
	Include string `yaml:"include"`

	// Exclude is an optional doublestar glob removing matches.
	Exclude string `yaml:"exclude,omitempty"`

	// Extractor selects how matched files are parsed.
	Extractor ExtractorKind `yaml:"extractor"`
}

func (s *SourceConfig) Validate() error {
	if s.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if !strings.HasPrefix(s.Library, "/") {
		return fmt.Errorf("library id must start with '/': %q", s.Library)
	}
	if s.Include == "" {
		return fmt.Errorf("include glob is required")
	}
	switch s.Extractor {
	case ExtractorMarkdown, ExtractorJSDoc, ExtractorSample:
	case "":
		return fmt.Errorf("extractor is required")
	default:
		return fmt.Errorf("unknown extractor: %q", s.Extractor)
	}
	return nil
}

// LibraryID returns the library identifier without the leading slash.
func (s *SourceConfig) LibraryID() string {
	return strings.TrimPrefix(s.Library, "/")
}
