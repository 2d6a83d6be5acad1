package lfht

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	diff "github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"

	"github.com/google/go-cmp/cmp"

	"github.com/kolkov/rcuht/rcu"
)

// keySetSnapshot returns every live key in the table, sorted, for
// before/after resize comparisons.
func keySetSnapshot(m *Map, ops rcu.Ops) []string {
	var keys []string
	for it := m.First(ops); it.Valid(); it = m.Next(ops, it) {
		keys = append(keys, string(it.Key()))
	}
	sort.Strings(keys)
	return keys
}

// requireSameKeySet fails with a readable unified diff (rather than a
// raw slice dump) when before and after disagree — the resize path must
// never lose or duplicate a key.
func requireSameKeySet(t *testing.T, before, after []string) {
	t.Helper()
	if cmp.Equal(before, after) {
		return
	}
	edits := myers.ComputeEdits("", strings.Join(before, "\n"), strings.Join(after, "\n"))
	unified := diff.ToUnified("before", "after", strings.Join(before, "\n"), edits)
	t.Fatalf("key set changed across resize:\n%s", fmt.Sprint(unified))
}

func TestResizeGrowPreservesKeySet(t *testing.T) {
	m, ops, done := newTestMap(t, Config{InitialSize: 1, MinSize: 1, MaxSize: 4096})
	defer done()

	for i := 0; i < 300; i++ {
		m.Add(ops, []byte(fmt.Sprintf("key-%03d", i)), i)
	}
	before := keySetSnapshot(m, ops)

	if err := m.Resize(ops, 512); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	after := keySetSnapshot(m, ops)

	requireSameKeySet(t, before, after)
}

func TestResizeShrinkPreservesKeySet(t *testing.T) {
	m, ops, done := newTestMap(t, Config{InitialSize: 512, MinSize: 1, MaxSize: 4096})
	defer done()

	for i := 0; i < 300; i++ {
		m.Add(ops, []byte(fmt.Sprintf("key-%03d", i)), i)
	}
	before := keySetSnapshot(m, ops)

	if err := m.Resize(ops, 2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	after := keySetSnapshot(m, ops)

	requireSameKeySet(t, before, after)
}

func TestResizeRoundTripPreservesKeySet(t *testing.T) {
	m, ops, done := newTestMap(t, Config{InitialSize: 8, MinSize: 1, MaxSize: 4096})
	defer done()

	for i := 0; i < 100; i++ {
		m.Add(ops, []byte(fmt.Sprintf("rt-%03d", i)), i)
	}
	before := keySetSnapshot(m, ops)

	if err := m.Resize(ops, 1024); err != nil {
		t.Fatalf("Resize up: %v", err)
	}
	if err := m.Resize(ops, 8); err != nil {
		t.Fatalf("Resize back down: %v", err)
	}
	after := keySetSnapshot(m, ops)

	requireSameKeySet(t, before, after)
}
