package main

import (
	"runtime/debug"

	"github.com/prettymuchbryce/fmtcheck/cmd"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// go install records the module version
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	cmd.SetVersion(version)
	cmd.Execute()
}
