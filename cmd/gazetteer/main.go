// Command gazetteer resolves town names to OpenStreetMap boundaries
// and enumerates the localities inside them.
package main

import (
	"fmt"
	"os"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driving/cli"
)

// version is injected at build time via
// -ldflags "-X main.version=v1.2.3".
var version string

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
