// Package buildinfo exposes the version stamped into drawalign binaries.
//
// The linker fills these in at release time:
//
//	go build -ldflags "-X github.com/siteworks/drawalign/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/siteworks/drawalign/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/siteworks/drawalign/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/drawalign
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the short git SHA the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// Info is the JSON shape reported by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns a multi-line summary for `drawalign --version` style output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
