package main

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kolkov/rcuht/lfht"
	"github.com/kolkov/rcuht/rcu"
)

// Report summarizes one completed run (spec.md §4.2.7's count_nodes
// diagnostics, extended with throughput the way a production benchmark
// harness reports it).
type Report struct {
	Readers      int           `json:"readers"`
	Writers      int           `json:"writers"`
	Duration     time.Duration `json:"duration"`
	Lookups      int64         `json:"lookups"`
	Adds         int64         `json:"adds"`
	Dels         int64         `json:"dels"`
	FinalCount   int64         `json:"final_count"`
	FinalOrder   int           `json:"final_order"`
	LongestChain int           `json:"longest_chain"`
}

func keyHash(key []byte) uint64 {
	h := fnv.New64a()
	h.Write(key)
	return h.Sum64()
}

func keyFor(n int) []byte {
	return []byte(fmt.Sprintf("k%d", n))
}

// RunBench drives cfg.Readers reader goroutines and cfg.Writers writer
// goroutines against one lfht.Map for cfg.Duration, then returns a Report.
// Every goroutine registers and uses its own rcu.Ops — the Map itself
// holds no fixed Ops, so concurrent callers never contend the same
// registered reader slot (see lfht.Config's doc comment).
func RunBench(cfg Config) (Report, error) {
	dom := rcu.New(rcu.Options{})
	defer dom.Close()

	m, err := lfht.New(lfht.Config{
		Hash:        keyHash,
		InitialSize: cfg.TableSize,
		MinSize:     cfg.MinSize,
		MaxSize:     cfg.MaxSize,
		AutoResize:  cfg.AutoResize,
		NewOps:      func() (rcu.Ops, error) { return rcu.NewOps(dom) },
	})
	if err != nil {
		return Report{}, fmt.Errorf("rcuhtbench: constructing table: %w", err)
	}

	var lookups, adds, dels atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < cfg.Readers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			ops, err := rcu.NewOps(dom)
			if err != nil {
				return
			}
			if err := ops.RegisterThread(); err != nil {
				return
			}
			defer ops.UnregisterThread()

			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
				}
				m.Lookup(ops, keyFor(rng.Intn(cfg.KeySpace)))
				lookups.Add(1)
			}
		}(int64(i + 1))
	}

	for i := 0; i < cfg.Writers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			ops, err := rcu.NewOps(dom)
			if err != nil {
				return
			}
			if err := ops.RegisterThread(); err != nil {
				return
			}
			defer ops.UnregisterThread()

			rng := rand.New(rand.NewSource(seed + 1000))
			for {
				select {
				case <-stop:
					return
				default:
				}
				k := keyFor(rng.Intn(cfg.KeySpace))
				if rng.Intn(2) == 0 {
					m.Add(ops, k, rng.Int())
					adds.Add(1)
				} else {
					if m.Del(ops, k) == nil {
						dels.Add(1)
					}
				}
			}
		}(int64(i + 1))
	}

	time.Sleep(cfg.Duration)
	close(stop)
	wg.Wait()

	c := m.CountNodes()
	return Report{
		Readers:      cfg.Readers,
		Writers:      cfg.Writers,
		Duration:     cfg.Duration,
		Lookups:      lookups.Load(),
		Adds:         adds.Load(),
		Dels:         dels.Load(),
		FinalCount:   int64(c.Exact),
		FinalOrder:   c.Order,
		LongestChain: c.LongestChain,
	}, nil
}
