package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ldaputil/ldifdiff/internal/attrset"
	"github.com/ldaputil/ldifdiff/internal/diff"
	"github.com/ldaputil/ldifdiff/internal/ldif"
	"github.com/ldaputil/ldifdiff/internal/store"
)

// runDiff wires the codec, store, and driver together and reports the
// summary. Change records go to the primary output; everything else
// (warnings, summary) goes to the diagnostic stream via slog.
func runDiff(opts *Options, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Debug)

	system := attrset.Default()
	if opts.AttrsFile != "" {
		var err error
		if system, err = attrset.Load(opts.AttrsFile); err != nil {
			return WrapExitError(ExitUsage, "bad attribute override", err)
		}
	}

	origPath, targetPath := opts.Orig, opts.Target
	if opts.Reverse {
		origPath, targetPath = targetPath, origPath
	}

	orig, err := ldif.Open(origPath)
	if err != nil {
		return WrapExitError(ExitFatal, "cannot read original snapshot", err)
	}
	defer orig.Close()

	target, err := ldif.Open(targetPath)
	if err != nil {
		return WrapExitError(ExitFatal, "cannot read target snapshot", err)
	}
	defer target.Close()

	snap, cleanup, err := openStore(opts.Spill, logger)
	if err != nil {
		return WrapExitError(ExitFatal, "cannot open snapshot store", err)
	}
	defer cleanup()

	out, closeOut, err := openOutput(opts.Out, cmd.OutOrStdout())
	if err != nil {
		return WrapExitError(ExitFatal, "cannot open output", err)
	}

	writer := ldif.NewWriter(out)
	builder := diff.NewBuilder(system, opts.IncludeSystem)
	driver := diff.NewDriver(snap, builder, writer.WriteRecord, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := driver.Run(ctx, orig, target)
	if err != nil {
		closeOut()
		return WrapExitError(ExitFatal, "diff aborted", err)
	}
	if err := writer.Flush(); err != nil {
		closeOut()
		return WrapExitError(ExitFatal, "diff aborted", err)
	}
	if err := closeOut(); err != nil {
		return WrapExitError(ExitFatal, "diff aborted", err)
	}

	logger.Info("diff complete",
		"orig_records", stats.OrigRecords,
		"target_records", stats.TargetRecords,
		"skipped", stats.Skipped,
		"adds", stats.Adds,
		"deletes", stats.Deletes,
		"modifies", stats.Modifies,
	)
	return nil
}

// newLogger builds the diagnostic logger. Warnings and the final summary
// are always visible; --debug (repeatable) opens up debug output.
func newLogger(w io.Writer, debug int) *slog.Logger {
	level := slog.LevelInfo
	if debug > 0 {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore selects the snapshot store implementation. With spill, the
// store lives in a throwaway SQLite database under the temp directory and
// is removed when the run finishes.
func openStore(spill bool, logger *slog.Logger) (store.Snapshot, func(), error) {
	if !spill {
		mem := store.NewMemory()
		return mem, func() {}, nil
	}

	path := filepath.Join(os.TempDir(), "ldifdiff-"+uuid.NewString()+".db")
	logger.Debug("using spill store", "path", path)
	db, err := store.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing spill store", "error", err)
		}
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			os.Remove(p)
		}
	}
	return db, cleanup, nil
}

// openOutput returns the primary output writer and its close function.
// Stdout is never closed.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
