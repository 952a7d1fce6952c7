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

package main

import (
	"fmt"
	"os"

	"github.com/sap-docs/mcp-server/pkg/config"
	"github.com/sap-docs/mcp-server/pkg/logger"
)

const (
	// LogFileEnvVar is the environment variable for the log file path.
	LogFileEnvVar = "LOG_FILE"
	// LogLevelEnvVar is the environment variable for the log level.
	LogLevelEnvVar = "LOG_LEVEL"
	// LogFormatEnvVar is the environment variable for the log format.
	LogFormatEnvVar = "LOG_FORMAT"
	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "simple"
)

// initLoggerFromCLI initializes the logger from CLI flags and
// environment variables. Priority: CLI flags > env vars > defaults.
// It returns a cleanup function when a log file was opened.
func initLoggerFromCLI(cliLogLevel, cliLogFile, cliLogFormat string) (func(), error) {
	logLevel := cliLogLevel
	if logLevel == "" {
		logLevel = os.Getenv(LogLevelEnvVar)
	}
	if logLevel == "" {
		logLevel = "info"
	}

	logFile := cliLogFile
	if logFile == "" {
		logFile = os.Getenv(LogFileEnvVar)
	}

	logFormat := cliLogFormat
	if logFormat == "" {
		logFormat = os.Getenv(LogFormatEnvVar)
	}
	if logFormat == "" {
		logFormat = DefaultLogFormat
	}

	return initLogger(logLevel, logFile, logFormat)
}

// applyConfigLogger re-initializes the logger from the config file
// section, unless CLI flags or env vars already decided the settings.
func applyConfigLogger(cli *CLI, cfg config.LoggerConfig) (func(), error) {
	overridden := cli.LogLevel != "" || cli.LogFile != "" || cli.LogFormat != "" ||
		os.Getenv(LogLevelEnvVar) != "" || os.Getenv(LogFileEnvVar) != "" || os.Getenv(LogFormatEnvVar) != ""
	if overridden {
		return nil, nil
	}
	return initLogger(cfg.Level, cfg.File, cfg.Format)
}

func initLogger(logLevel, logFile, logFormat string) (func(), error) {
	if logLevel == "" {
		logLevel = "info"
	}
	if logFormat == "" {
		logFormat = DefaultLogFormat
	}

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	output := os.Stderr
	var cleanup func()
	if logFile != "" {
		file, cleanupFn, err := logger.OpenLogFile(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		cleanup = cleanupFn
	}

	logger.Init(level, output, logFormat)
	return cleanup, nil
}
