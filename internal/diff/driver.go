package diff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ldaputil/ldifdiff/internal/ldif"
	"github.com/ldaputil/ldifdiff/internal/store"
)

// Phase is the driver's position in its fixed run sequence.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseMatching
	PhaseDraining
	PhaseDone
)

// String returns the phase name for diagnostics.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseMatching:
		return "matching"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Source is a stream of decoded entries. Next returns io.EOF at end of
// stream and *ldif.DecodeError for a malformed record that has been
// consumed and can be skipped.
type Source interface {
	Next() (*ldif.Entry, error)
}

// Stats summarizes one run: records read from each snapshot (including
// skipped ones) and change records actually produced.
type Stats struct {
	OrigRecords   int
	TargetRecords int
	Skipped       int
	Adds          int
	Deletes       int
	Modifies      int
}

// Changes returns the total number of change records produced.
func (s Stats) Changes() int {
	return s.Adds + s.Deletes + s.Modifies
}

// Driver runs the two-pass match: load the original snapshot into the
// keyed store, stream the target against it, then drain unmatched
// originals as deletes. A Driver runs once; create a new one per run.
type Driver struct {
	store   store.Snapshot
	builder *Builder
	emit    func(*ldif.ChangeRecord) error
	log     *slog.Logger

	phase Phase
	stats Stats
}

// NewDriver creates a Driver. The store is owned by the driver until Run
// returns; emit receives change records in output order and any error it
// returns aborts the run.
func NewDriver(st store.Snapshot, builder *Builder, emit func(*ldif.ChangeRecord) error, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{store: st, builder: builder, emit: emit, log: log}
}

// Phase returns the driver's current phase.
func (d *Driver) Phase() Phase {
	return d.phase
}

// Run executes the full sequence: load orig, match target, drain deletes.
// Decode failures in either stream are skipped with a warning; store,
// stream I/O, and emit failures abort immediately.
func (d *Driver) Run(ctx context.Context, orig, target Source) (Stats, error) {
	if d.phase != PhaseLoading {
		return d.stats, fmt.Errorf("driver already run (phase %s)", d.phase)
	}

	if err := d.load(ctx, orig); err != nil {
		return d.stats, err
	}
	d.phase = PhaseMatching
	if err := d.match(ctx, target); err != nil {
		return d.stats, err
	}
	d.phase = PhaseDraining
	if err := d.drain(ctx); err != nil {
		return d.stats, err
	}
	d.phase = PhaseDone
	return d.stats, nil
}

// load consumes the original snapshot into the store, keyed by stable
// identifier.
func (d *Driver) load(ctx context.Context, orig Source) error {
	for {
		entry, err := d.next(orig, "original", &d.stats.OrigRecords)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if entry == nil {
			continue // skipped record
		}
		if err := d.store.Put(ctx, entry.UUID(), entry); err != nil {
			return fmt.Errorf("load original snapshot: %w", err)
		}
	}
}

// match consumes the target snapshot one entry at a time. A store hit is
// a candidate modify and marks the original as seen; a miss is an add.
func (d *Driver) match(ctx context.Context, target Source) error {
	for {
		entry, err := d.next(target, "target", &d.stats.TargetRecords)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if entry == nil {
			continue
		}

		id := entry.UUID()
		old, found, err := d.store.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("match target snapshot: %w", err)
		}
		if !found {
			if err := d.emit(d.builder.Add(entry)); err != nil {
				return err
			}
			d.stats.Adds++
			continue
		}
		// Matched: the original is seen whether or not anything changed.
		if err := d.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("match target snapshot: %w", err)
		}
		if rec := d.builder.Modify(old, entry); rec != nil {
			if err := d.emit(rec); err != nil {
				return err
			}
			d.stats.Modifies++
		}
	}
}

// drain emits a delete for every original entry the target never matched,
// then clears the store.
func (d *Driver) drain(ctx context.Context) error {
	err := d.store.Iterate(ctx, func(id string, entry *ldif.Entry) error {
		if err := d.emit(d.builder.Delete(entry.DN)); err != nil {
			return err
		}
		d.stats.Deletes++
		return nil
	})
	if err != nil {
		return err
	}
	return d.store.Clear(ctx)
}

// next pulls one entry from a source, counting every consumed record and
// turning recoverable conditions (malformed record, missing identifier)
// into a nil entry after logging a warning.
func (d *Driver) next(src Source, snapshot string, counter *int) (*ldif.Entry, error) {
	entry, err := src.Next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		var derr *ldif.DecodeError
		if errors.As(err, &derr) {
			*counter++
			d.stats.Skipped++
			d.log.Warn("skipping malformed record", "snapshot", snapshot, "error", derr)
			return nil, nil
		}
		return nil, fmt.Errorf("read %s snapshot: %w", snapshot, err)
	}
	*counter++
	if entry.UUID() == "" {
		d.stats.Skipped++
		d.log.Warn("skipping record without stable identifier", "snapshot", snapshot, "dn", entry.DN)
		return nil, nil
	}
	return entry, nil
}
