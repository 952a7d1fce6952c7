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

// Package sapdocs exposes the release identity of the documentation
// server. BuildDate and GitCommit are stamped at link time via
// -ldflags; the defaults cover plain `go build`.
package sapdocs

import (
	"fmt"
	"runtime"
)

const (
	Version   = "0.5.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info is the release identity reported by the version command and the
// /status endpoint.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion snapshots the compiled-in release identity together with
// the running toolchain and platform.
func GetVersion() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the identity as a single human-readable line.
func (i Info) String() string {
	return fmt.Sprintf("sapdocs %s (built %s, commit %s, %s %s)",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.Platform)
}
