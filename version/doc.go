// Package version exposes the harvester build information.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/harvester/version.Version=1.4.0 \
//	  -X github.com/kbukum/harvester/version.GitCommit=$(git rev-parse --short HEAD)" \
//	  ./cmd/harvester
//
// Values left unset fall back to the module build info recorded by the Go
// toolchain.
package version
