// Package buildinfo carries the version stamp of a figwire binary.
//
// The release build injects the values via ldflags:
//
//	go build -ldflags "\
//	    -X github.com/matzehuels/figwire/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/figwire/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/figwire/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/figwire
//
// Unstamped builds (go run, go test) report the dev defaults.
package buildinfo

import "fmt"

var (
	// Version is the semantic version of the release.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String returns the stamp on one line, for startup logs.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

// Template returns the cobra version template rendered by figwire --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
