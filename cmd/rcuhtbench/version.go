package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/mod/modfile"
)

// versionCommand parses this module's own go.mod with x/mod/modfile and
// prints its module path and Go directive alongside the runtime's own
// version — repurposing the teacher's sole pre-existing dependency
// (previously used to parse instrumented packages' go.mod files) to
// describe the tool itself.
func versionCommand() {
	path, goDirective, err := readOwnModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("rcuhtbench\n")
	fmt.Printf("  module:     %s\n", path)
	fmt.Printf("  go (go.mod): %s\n", goDirective)
	fmt.Printf("  go (runtime): %s\n", runtime.Version())
}

// readOwnModule locates and parses the nearest go.mod at or above the
// current working directory, walking up one directory at a time
// the way `go list -m` resolves the enclosing module, since a built
// binary carries no embedded go.mod of its own.
func readOwnModule() (modulePath, goVersion string, err error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	for {
		p := filepath.Join(dir, "go.mod")
		data, readErr := os.ReadFile(p)
		if readErr == nil {
			f, parseErr := modfile.Parse(p, data, nil)
			if parseErr != nil {
				return "", "", parseErr
			}
			modulePath := ""
			if f.Module != nil {
				modulePath = f.Module.Mod.Path
			}
			goVersion := ""
			if f.Go != nil {
				goVersion = f.Go.Version
			}
			return modulePath, goVersion, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("rcuhtbench: no go.mod found above %s", dir)
		}
		dir = parent
	}
}
