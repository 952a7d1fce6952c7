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
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/config"
	"github.com/sap-docs/mcp-server/pkg/logger"
)

// Harvester walks configured source trees and builds catalog bundles.
type Harvester struct {
	sources []config.SourceConfig
	logger  *slog.Logger
}

// NewHarvester builds a harvester over the configured sources.
func NewHarvester(sources []config.SourceConfig) *Harvester {
	return &Harvester{
		sources: sources,
		logger:  logger.GetLogger(),
	}
}

// Run harvests every source into a bundle. A broken file is logged and
// skipped; a missing source directory fails the run.
func (h *Harvester) Run(ctx context.Context) ([]catalog.Bundle, error) {
	bundles := make([]catalog.Bundle, 0, len(h.sources))
	for _, src := range h.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := h.harvestSource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to harvest %s: %w", src.Library, err)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

func (h *Harvester) harvestSource(ctx context.Context, src config.SourceConfig) (catalog.Bundle, error) {
	extractor, err := ForKind(src.Extractor)
	if err != nil {
		return catalog.Bundle{}, err
	}

	absDir, err := filepath.Abs(src.Dir)
	if err != nil {
		return catalog.Bundle{}, err
	}
	if _, err := os.Stat(absDir); err != nil {
		return catalog.Bundle{}, fmt.Errorf("source dir unavailable: %w", err)
	}

	bundle := catalog.Bundle{
		ID:          src.Library,
		Name:        src.Name,
		Description: src.Description,
		SourceDir:   absDir,
	}

	fsys := os.DirFS(absDir)
	files := 0
	skipped := 0
	err = doublestar.GlobWalk(fsys, src.Include, func(relFile string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if src.Exclude != "" {
			if matched, _ := doublestar.Match(src.Exclude, relFile); matched {
				return nil
			}
		}

		content, err := fs.ReadFile(fsys, relFile)
		if err != nil {
			h.logger.Warn("skipping unreadable file", "library", src.Library, "file", relFile, "error", err)
			skipped++
			return nil
		}
		docs, err := extractor.Extract(src.Library, relFile, content)
		if err != nil {
			h.logger.Warn("skipping unparseable file", "library", src.Library, "file", relFile, "error", err)
			skipped++
			return nil
		}
		bundle.Documents = append(bundle.Documents, docs...)
		files++
		return nil
	})
	if err != nil {
		return catalog.Bundle{}, err
	}

	h.logger.Info("harvested source",
		"library", src.Library,
		"files", files,
		"skipped", skipped,
		"documents", len(bundle.Documents))
	return bundle, nil
}
