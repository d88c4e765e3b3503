// Package journal records the public outputs and execution cost of a
// verification.
//
// The verifier never writes outputs directly. It calls a Committer for every
// public value and reports arithmetic work to a bigint.Meter. Journal and
// CycleLedger are the in-process implementations; a Receipt bundles both
// into a canonical CBOR artifact.
package journal

import (
	"bytes"
	"maps"
	"slices"
	"sync"
)

// Committer accepts public outputs in order.
type Committer interface {
	Commit(data []byte)
}

// Journal is an append-only Committer.
type Journal struct {
	mu      sync.Mutex
	entries [][]byte
}

// Commit appends a copy of data.
func (j *Journal) Commit(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, bytes.Clone(data))
}

// Entries returns a copy of all committed values in order.
func (j *Journal) Entries() [][]byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([][]byte, len(j.entries))
	for i, e := range j.entries {
		out[i] = bytes.Clone(e)
	}
	return out
}

// Len returns the number of committed values.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// CycleLedger counts operations by name. It implements bigint.Meter.
type CycleLedger struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func (l *CycleLedger) Add(op string, n uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = make(map[string]uint64)
	}
	l.counts[op] += n
}

// Count returns the total for op.
func (l *CycleLedger) Count(op string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[op]
}

// Snapshot returns a copy of all counters.
func (l *CycleLedger) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.counts)
}

// Ops returns the recorded operation names in sorted order.
func (l *CycleLedger) Ops() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.counts))
}
