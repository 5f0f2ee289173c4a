// appmeta maps running executables to the desktop applications that launch them.
// Single binary: scans Desktop Entry files, follows changes, answers lookups.
package main

import (
	"os"

	"github.com/corey/appmeta/cmd/appmeta/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
