// Package main is the single-binary entrypoint for questd.
package main

import "github.com/aimastery/questd/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
