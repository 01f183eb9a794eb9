package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information - populated at build time via ldflags
// Build with: go build -ldflags "-X main.Version=v1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/lendercheck
var (
	// Version is the semantic version of the release
	Version = "dev"

	// GitCommit is the git commit hash
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp
	BuildTime = "unknown"
)

const binaryName = "lendercheck"

// BuildInfo reports the binary, its release and the toolchain it was built with
func BuildInfo() string {
	return fmt.Sprintf("%s %s (%s) built %s with %s", binaryName, Version, GitCommit, BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), BuildInfo())
		},
	}
}
