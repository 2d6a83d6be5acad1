package registry

import (
	"errors"
	"os"
	"os/exec"
	"testing"
)

func TestRegisterUnregisterReusesSlot(t *testing.T) {
	reg := New(0)

	r1, err := reg.Register()
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg.Unregister(r1)

	r2, err := reg.Register()
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r2.idx != r1.idx {
		t.Fatalf("expected slot reuse, got idx %d want %d", r2.idx, r1.idx)
	}
}

func TestCapacityLimit(t *testing.T) {
	reg := New(1)
	if _, err := reg.Register(); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := reg.Register(); err == nil {
		t.Fatal("expected ErrCapacity on second Register")
	}
}

func TestReadLockUnlockQuiescence(t *testing.T) {
	reg := New(0)
	r, _ := reg.Register()

	if !QuiescentFor(r.s, 0) || !QuiescentFor(r.s, 1) {
		t.Fatal("freshly registered reader must be quiescent for both parities")
	}

	reg.ReadLock(r, 0)
	if QuiescentFor(r.s, 1) {
		t.Fatal("reader observing parity 0 must not be quiescent for target 1")
	}
	if !QuiescentFor(r.s, 0) {
		t.Fatal("reader observing parity 0 must be quiescent for target 0")
	}

	reg.ReadUnlock(r)
	if !QuiescentFor(r.s, 1) {
		t.Fatal("reader must be quiescent for any target once offline")
	}
}

func TestNestedReadLock(t *testing.T) {
	reg := New(0)
	r, _ := reg.Register()

	reg.ReadLock(r, 1)
	reg.ReadLock(r, 1)
	reg.ReadUnlock(r)
	if QuiescentFor(r.s, 0) {
		t.Fatal("reader still nested once must remain non-quiescent for the other parity")
	}
	reg.ReadUnlock(r)
	if !QuiescentFor(r.s, 0) {
		t.Fatal("reader must be quiescent after both matching unlocks")
	}
}

// TestUnregisterWhileActiveIsFatal and TestReadUnlockWithoutLockIsFatal
// exercise fatal(), which calls os.Exit(2) rather than panicking (spec.md
// §7: these invariant violations must not be maskable by a recover() up
// the call stack). Since os.Exit terminates the process outright, each
// re-execs this same test binary in a subprocess and asserts on its exit
// code, the standard library's own pattern for testing os.Exit call sites.
func TestUnregisterWhileActiveIsFatal(t *testing.T) {
	if os.Getenv("RCUHT_REGISTRY_FATAL_CHILD") == "unregister_while_active" {
		reg := New(0)
		r, _ := reg.Register()
		reg.ReadLock(r, 0)
		reg.Unregister(r)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestUnregisterWhileActiveIsFatal")
	cmd.Env = append(os.Environ(), "RCUHT_REGISTRY_FATAL_CHILD=unregister_while_active")
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected child process to exit with an error, got %v", err)
	}
	if exitErr.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %d", exitErr.ExitCode())
	}
}

func TestReadUnlockWithoutLockIsFatal(t *testing.T) {
	if os.Getenv("RCUHT_REGISTRY_FATAL_CHILD") == "read_unlock_without_lock" {
		reg := New(0)
		r, _ := reg.Register()
		reg.ReadUnlock(r)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestReadUnlockWithoutLockIsFatal")
	cmd.Env = append(os.Environ(), "RCUHT_REGISTRY_FATAL_CHILD=read_unlock_without_lock")
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected child process to exit with an error, got %v", err)
	}
	if exitErr.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %d", exitErr.ExitCode())
	}
}

func TestSnapshotIncludesAllSlots(t *testing.T) {
	reg := New(0)
	var readers []*Reader
	for i := 0; i < 8; i++ {
		r, err := reg.Register()
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		readers = append(readers, r)
	}

	snap := reg.Snapshot()
	if len(snap) != len(readers) {
		t.Fatalf("Snapshot returned %d slots, want %d", len(snap), len(readers))
	}
}
