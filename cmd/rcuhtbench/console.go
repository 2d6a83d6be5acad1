package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/kolkov/rcuht/lfht"
	"github.com/kolkov/rcuht/rcu"
)

// consoleCommand launches an interactive REPL against one live lfht.Map —
// the natural operator debugging surface for a hash table library,
// mirrored on the teacher's sloty console's put/get/del/scan loop.
func consoleCommand(_ []string) {
	dom := rcu.New(rcu.Options{})
	defer dom.Close()

	ops, err := rcu.NewOps(dom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := ops.RegisterThread(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ops.UnregisterThread()

	m, err := lfht.New(lfht.Config{
		Hash:       keyHash,
		MinSize:    1,
		MaxSize:    1 << 20,
		AutoResize: true,
		NewOps:     func() (rcu.Ops, error) { return rcu.NewOps(dom) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("rcuhtbench console — add/del/lookup/resize/count, exit to quit")
	for {
		input, err := line.Prompt("rcuhtbench> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		line.AppendHistory(input)
		if !runConsoleCommand(m, ops, strings.TrimSpace(input)) {
			return
		}
	}
}

// runConsoleCommand executes one line of REPL input, returning false if
// the console should exit.
func runConsoleCommand(m *lfht.Map, ops rcu.Ops, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return true
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit", "q":
		return false
	case "help":
		fmt.Println("commands: add <key> <val>, del <key>, lookup <key>, resize <n>, count, help, exit")
	case "add":
		if len(args) < 2 {
			fmt.Println("usage: add <key> <val>")
			return true
		}
		m.Add(ops, []byte(args[0]), args[1])
		fmt.Println("ok")
	case "del":
		if len(args) < 1 {
			fmt.Println("usage: del <key>")
			return true
		}
		if err := m.Del(ops, []byte(args[0])); err != nil {
			fmt.Printf("error: %v\n", err)
			return true
		}
		fmt.Println("ok")
	case "lookup":
		if len(args) < 1 {
			fmt.Println("usage: lookup <key>")
			return true
		}
		it := m.Lookup(ops, []byte(args[0]))
		if !it.Valid() {
			fmt.Println("not found")
			return true
		}
		fmt.Println(it.Value())
	case "resize":
		if len(args) < 1 {
			fmt.Println("usage: resize <n>")
			return true
		}
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return true
		}
		if err := m.Resize(ops, n); err != nil {
			fmt.Printf("error: %v\n", err)
			return true
		}
		fmt.Println("ok")
	case "count":
		c := m.CountNodes()
		fmt.Printf("approx_before=%d exact=%d exact_removed=%d approx_after=%d order=%d longest_chain=%d\n",
			c.ApproxBefore, c.Exact, c.ExactRemoved, c.ApproxAfter, c.Order, c.LongestChain)
	default:
		fmt.Printf("unknown command: %s (try help)\n", cmd)
	}
	return true
}
