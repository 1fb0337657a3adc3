// Package main is the entry point for the dupfind CLI tool.
package main

import (
	"os"

	"github.com/dupfind/dupfind/internal/buildinfo"
	"github.com/dupfind/dupfind/internal/cli"
)

// Build-time metadata injected via ldflags; mirrored into internal/buildinfo
// so every package can read it without importing package main.
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = "unknown"
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	buildinfo.GoVersion = goVersion

	os.Exit(cli.Execute())
}
