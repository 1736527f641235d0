package cmd

import (
	"fmt"
	"runtime"
)

// Version information, injected at build time via ldflags.
var (
	version   = "0.1.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// runVersion displays version information.
func runVersion() {
	fmt.Printf("answerdesk v%s\n", version)
	fmt.Printf("Build: %s\n", buildTime)
	fmt.Printf("Commit: %s\n", gitCommit)
	fmt.Printf("Go: %s\n", runtime.Version())
}
