package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// runCommand implements 'rcuhtbench run': parses flags (optionally
// overlaid with a --config TOML file or a --scenario HuJSON file) into a
// Config, runs the stress scenario, and prints (and optionally persists)
// the resulting Report.
func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	readers := fs.Int("readers", 0, "reader goroutine count (0 = config/default)")
	writers := fs.Int("writers", 0, "writer goroutine count (0 = config/default)")
	tableSize := fs.Uint64("table-size", 0, "initial bucket count (0 = config/default)")
	duration := fs.Duration("duration", 0, "run duration (0 = config/default)")
	autoResize := fs.Bool("auto-resize", true, "enable automatic grow/shrink")
	configPath := fs.String("config", "", "TOML scenario file")
	scenarioPath := fs.String("scenario", "", "HuJSON ad hoc scenario file")
	reportPath := fs.String("report", "", "write the resulting report as JSON to this path")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *scenarioPath != "" {
		sc, err := LoadScenario(*scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = sc.toConfig(cfg)
	}

	if *readers != 0 {
		cfg.Readers = *readers
	}
	if *writers != 0 {
		cfg.Writers = *writers
	}
	if *tableSize != 0 {
		cfg.TableSize = *tableSize
	}
	if *duration != 0 {
		cfg.Duration = *duration
	}
	if fs.Changed("auto-resize") {
		cfg.AutoResize = *autoResize
	}

	fmt.Printf("running: readers=%d writers=%d table_size=%d duration=%s auto_resize=%v\n",
		cfg.Readers, cfg.Writers, cfg.TableSize, cfg.Duration, cfg.AutoResize)

	start := time.Now()
	report, err := RunBench(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done in %s: lookups=%d adds=%d dels=%d final_count=%d final_order=%d longest_chain=%d\n",
		time.Since(start), report.Lookups, report.Adds, report.Dels,
		report.FinalCount, report.FinalOrder, report.LongestChain)

	path := *reportPath
	if path == "" {
		path = cfg.ReportPath
	}
	if path != "" {
		if err := WriteReport(path, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("report written to %s\n", path)
	}
}
