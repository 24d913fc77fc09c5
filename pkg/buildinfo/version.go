// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/dreamscape/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/dreamscape/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/dreamscape/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/dreamscape
package buildinfo

import (
	"fmt"

	"github.com/matzehuels/dreamscape/pkg/scene"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Template returns the version template for cobra. Besides the build it
// names the composition algorithm version, which decides whether two
// binaries draw the same picture from the same data.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\nalgorithm: %s\n",
		Version, Commit, Date, scene.AlgorithmVersion)
}
