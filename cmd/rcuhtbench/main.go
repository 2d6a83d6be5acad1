// Command rcuhtbench is a stress-test and demo harness for the rcuht
// module: it drives concurrent readers and writers against an lfht.Map
// layered over an rcu.Domain and reports throughput, or drops the caller
// into an interactive REPL against one live table.
//
// Usage:
//
//	rcuhtbench run [flags]       Run a timed stress scenario
//	rcuhtbench console           Interactive add/del/lookup/resize REPL
//	rcuhtbench version           Print module path and Go version
//
// Mirrors the teacher's cmd/racedetector command-dispatch shape
// (main.go's switch over os.Args[1]), with pflag in place of the stdlib
// flag package for the richer scenario flag surface a stress harness
// needs.
package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCommand(os.Args[2:])
	case "console":
		consoleCommand(os.Args[2:])
	case "version", "--version", "-v":
		versionCommand()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`rcuhtbench - stress-test and demo harness for rcuht

USAGE:
    rcuhtbench <command> [flags]

COMMANDS:
    run        Run a timed concurrent stress scenario
    console    Interactive REPL against one live table
    version    Print module path and Go version
    help       Show this help message

EXAMPLES:
    rcuhtbench run --readers 8 --writers 2 --duration 5s
    rcuhtbench run --config scenario.toml
    rcuhtbench run --scenario adhoc.hujson
    rcuhtbench console
`)
}
