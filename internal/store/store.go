// Package store holds the original snapshot keyed by stable identifier
// while the target snapshot is scanned.
//
// Two implementations exist behind one interface: an in-memory map for
// snapshots that fit in RAM, and a SQLite-backed store for exports larger
// than memory. The matching driver owns the store exclusively for the
// duration of a run; there are no concurrent readers or writers.
//
// Iteration order is insertion order in both implementations, so delete
// records drain in the order entries appeared in the original snapshot
// and output is stable across runs.
package store

import (
	"context"

	"github.com/ldaputil/ldifdiff/internal/ldif"
)

// Snapshot is the keyed store the matching driver runs against.
//
// Put overwrites an existing id. Get's second return distinguishes
// "absent" from an empty entry. Iterate visits every remaining entry and
// stops at the first callback error, which it returns.
type Snapshot interface {
	Put(ctx context.Context, id string, entry *ldif.Entry) error
	Get(ctx context.Context, id string) (*ldif.Entry, bool, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
	Iterate(ctx context.Context, fn func(id string, entry *ldif.Entry) error) error
	Clear(ctx context.Context) error
	Close() error
}
