package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
)

// WriteReport marshals r as indented JSON and writes it to path
// atomically (rename-after-write), so a crash or interrupted run never
// leaves a half-written report file behind — the same concern the
// teacher's detector/report.go has for legible, trustworthy output.
func WriteReport(path string, r Report) error {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("rcuhtbench: marshaling report: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(string(body)+"\n")); err != nil {
		return fmt.Errorf("rcuhtbench: writing %s: %w", path, err)
	}
	return nil
}
