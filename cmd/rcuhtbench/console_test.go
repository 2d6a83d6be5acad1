package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/rcuht/lfht"
	"github.com/kolkov/rcuht/rcu"
)

func newConsoleTestMap(t *testing.T) (*lfht.Map, rcu.Ops) {
	t.Helper()
	dom := rcu.New(rcu.Options{})
	t.Cleanup(dom.Close)

	ops, err := rcu.NewOps(dom)
	require.NoError(t, err)
	require.NoError(t, ops.RegisterThread())
	t.Cleanup(ops.UnregisterThread)

	m, err := lfht.New(lfht.Config{
		Hash:       keyHash,
		MinSize:    1,
		MaxSize:    1 << 16,
		AutoResize: true,
		NewOps:     func() (rcu.Ops, error) { return rcu.NewOps(dom) },
	})
	require.NoError(t, err)
	return m, ops
}

func TestRunConsoleCommandAddLookupDel(t *testing.T) {
	m, ops := newConsoleTestMap(t)

	require.True(t, runConsoleCommand(m, ops, "add a 1"))
	it := m.Lookup(ops, []byte("a"))
	require.True(t, it.Valid())
	require.Equal(t, "1", it.Value())

	require.True(t, runConsoleCommand(m, ops, "del a"))
	require.False(t, m.Lookup(ops, []byte("a")).Valid())
}

func TestRunConsoleCommandCountAndUnknown(t *testing.T) {
	m, ops := newConsoleTestMap(t)

	require.True(t, runConsoleCommand(m, ops, ""))
	require.True(t, runConsoleCommand(m, ops, "count"))
	require.True(t, runConsoleCommand(m, ops, "bogus"))
}

func TestRunConsoleCommandExit(t *testing.T) {
	m, ops := newConsoleTestMap(t)
	require.False(t, runConsoleCommand(m, ops, "exit"))
	require.False(t, runConsoleCommand(m, ops, "quit"))
}
