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

// Command sapdocs is the federated SAP documentation search service.
//
// Usage:
//
//	sapdocs index --config sapdocs.yaml
//	sapdocs serve --config sapdocs.yaml
//	sapdocs validate --config sapdocs.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	sapdocs "github.com/sap-docs/mcp-server"
	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/config"
	"github.com/sap-docs/mcp-server/pkg/index"
	"github.com/sap-docs/mcp-server/pkg/ingest"
	"github.com/sap-docs/mcp-server/pkg/live"
	"github.com/sap-docs/mcp-server/pkg/search"
	"github.com/sap-docs/mcp-server/pkg/tools"
	"github.com/sap-docs/mcp-server/pkg/transport"
	"github.com/sap-docs/mcp-server/pkg/urlres"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the documentation server."`
	Index    IndexCmd    `cmd:"" help:"Harvest the configured sources and build the catalog and full-text index."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, json)."`
}

// loadConfig loads the config file, or defaults when no file is given.
func loadConfig(cli *CLI) (*config.Config, error) {
	if cli.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("Loaded configuration", "path", cli.Config)
	return cfg, nil
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(sapdocs.GetVersion().String())
	return nil
}

// ServeCmd starts the HTTP server over a prebuilt data directory.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides config)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	cleanup, err := applyConfigLogger(cli, cfg.Logger)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	cat, err := catalog.Load(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("failed to load catalog from %s (run 'sapdocs index' first): %w", cfg.Data.Dir, err)
	}

	ix, err := index.Open(filepath.Join(cfg.Data.Dir, index.DBFile))
	if err != nil {
		return fmt.Errorf("failed to open full-text index: %w", err)
	}
	defer ix.Close()

	resolver := urlres.NewResolver()
	adapters := live.FromConfig(cfg.Live)
	engine := search.NewEngine(ix, cat, resolver, adapters, cfg.Live.AdapterDeadline())
	fetcher := catalog.NewFetcher(cat, resolver, adapters)

	registry := tools.NewRegistry()
	registry.Register(tools.NewSearchTool(engine))
	registry.Register(tools.NewFetchTool(fetcher))
	// Live-backed tools stay registered even when live search is off so
	// the tool surface does not depend on configuration; with a nil
	// adapter they answer with empty results.
	fm, _ := adapters.ByName("abap-feature-matrix")
	registry.Register(tools.NewFeatureMatrixTool(fm))
	cm, _ := adapters.ByName("community")
	registry.Register(tools.NewCommunitySearchTool(cm))

	srv := transport.NewServer(cfg.Server, registry, cfg.Data.Dir, cat.Len(), len(cat.Bundles()), cfg.Tags)

	fmt.Printf("\nsapdocs server ready\n")
	fmt.Printf("   MCP endpoint: http://%s/mcp\n", cfg.Server.Address())
	fmt.Printf("   Health:       http://%s/health\n", cfg.Server.Address())
	fmt.Printf("   Status:       http://%s/status\n", cfg.Server.Address())
	fmt.Printf("   Metrics:      http://%s/metrics\n", cfg.Server.Address())
	fmt.Printf("   Documents:    %d across %d libraries\n", cat.Len(), len(cat.Bundles()))
	if len(adapters.Adapters()) > 0 {
		fmt.Printf("   Live search:  %d adapters enabled\n", len(adapters.Adapters()))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// IndexCmd harvests the configured sources and writes the catalog and
// the full-text index into the data directory.
type IndexCmd struct{}

func (c *IndexCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("config lists no sources to harvest")
	}

	bundles, err := ingest.NewHarvester(cfg.Sources).Run(ctx)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}
	cat, err := catalog.New(bundles)
	if err != nil {
		return fmt.Errorf("catalog build failed: %w", err)
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := cat.Save(cfg.Data.Dir); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	ix, err := index.Open(filepath.Join(cfg.Data.Dir, index.DBFile))
	if err != nil {
		return fmt.Errorf("failed to open full-text index: %w", err)
	}
	defer ix.Close()
	if err := ix.Rebuild(cat); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}

	fmt.Printf("Indexed %d documents from %d libraries into %s\n",
		cat.Len(), len(cat.Bundles()), cfg.Data.Dir)
	return nil
}

// ValidateCmd validates the configuration file.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("--config is required for validate command")
	}
	if _, err := config.Load(cli.Config); err != nil {
		return err
	}
	fmt.Printf("Configuration %s is valid\n", cli.Config)
	return nil
}

func main() {
	config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("sapdocs"),
		kong.Description("sapdocs - federated SAP documentation search over streaming HTTP"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
