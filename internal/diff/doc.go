// Package diff computes the change set that transforms one directory
// snapshot into another.
//
// Entries are matched across snapshots by their stable identifier
// (entryUUID), never by DN: a rename changes the DN but not the
// identifier, so a renamed entry diffs as one modify record instead of a
// spurious add/delete pair.
//
// The engine has three layers:
//
//   - DiffAttributes: a pure function comparing two attribute maps and
//     producing add/delete/replace operations.
//   - Builder: decides whether a pair of entries yields a record at all
//     and applies the system-attribute policy.
//   - Driver: the two-pass state machine. It loads the whole original
//     snapshot into a keyed store, streams the target once against it,
//     and finally drains whatever was never matched as deletes.
//
// Everything is strictly sequential. The store is owned by the driver for
// the duration of a run.
package diff
