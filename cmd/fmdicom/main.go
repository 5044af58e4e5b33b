// Command fm-dicom is the core CLI for loading, merging, anonymizing,
// validating, packaging, and sending DICOM datasets.
package main

import (
	"os"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/cli"
)

// version, commit, and date are injected at build time via -ldflags, e.g.:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Run(version, commit, date); err != nil {
		os.Exit(1)
	}
}
