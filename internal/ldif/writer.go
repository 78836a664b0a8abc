package ldif

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
)

// foldWidth is the maximum output line length before folding, per the
// common 76-column LDIF convention.
const foldWidth = 76

// Writer serializes change records into LDIF changetype syntax suitable
// for replay with ldapmodify. Records are separated by blank lines.
//
// Any write failure is fatal for the stream: the output contract is
// violated and the caller must abort.
type Writer struct {
	w       *bufio.Writer
	records int
}

// NewWriter creates a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Records returns how many records have been written.
func (w *Writer) Records() int {
	return w.records
}

// Flush writes any buffered output to the underlying stream.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush ldif output: %w", err)
	}
	return nil
}

// WriteRecord serializes one change record.
func (w *Writer) WriteRecord(rec *ChangeRecord) error {
	if w.records > 0 {
		if err := w.newline(); err != nil {
			return err
		}
	}
	w.records++

	if err := w.attrLine("dn", rec.DN); err != nil {
		return err
	}
	if err := w.attrLine("changetype", rec.Type.String()); err != nil {
		return err
	}

	switch rec.Type {
	case ChangeAdd:
		return w.writeAddBody(rec.Entry)
	case ChangeDelete:
		return nil
	case ChangeModify:
		return w.writeModifyBody(rec.Mods)
	default:
		return fmt.Errorf("encode record for %q: unknown change type %d", rec.DN, rec.Type)
	}
}

// writeAddBody emits every attribute of the entry. Attribute names are
// sorted so output is stable across runs.
func (w *Writer) writeAddBody(entry *Entry) error {
	names := make([]string, 0, len(entry.Attributes))
	for name := range entry.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, val := range entry.Attributes[name] {
			if err := w.attrLine(name, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeModifyBody emits sub-operations in the contractual order: adds,
// then deletes, then replaces, each terminated by a "-" separator line.
func (w *Writer) writeModifyBody(mods Ops) error {
	emit := func(keyword string, ops []AttrOp) error {
		for _, op := range ops {
			if err := w.attrLine(keyword, op.Name); err != nil {
				return err
			}
			for _, val := range op.Values {
				if err := w.attrLine(op.Name, val); err != nil {
					return err
				}
			}
			if err := w.line("-"); err != nil {
				return err
			}
		}
		return nil
	}
	if err := emit("add", mods.Adds); err != nil {
		return err
	}
	if err := emit("delete", mods.Deletes); err != nil {
		return err
	}
	return emit("replace", mods.Replaces)
}

// attrLine emits "name: value", switching to the base64 form when the
// value is not a safe string, folding as needed.
func (w *Writer) attrLine(name, value string) error {
	if needsBase64(value) {
		enc := base64.StdEncoding.EncodeToString([]byte(value))
		return w.line(name + ":: " + enc)
	}
	return w.line(name + ": " + value)
}

// line folds and writes one logical line.
func (w *Writer) line(s string) error {
	first := true
	for first || len(s) > 0 {
		width := foldWidth
		if !first {
			// Continuation lines carry a leading space.
			if err := w.writeString(" "); err != nil {
				return err
			}
			width = foldWidth - 1
		}
		n := min(len(s), width)
		if err := w.writeString(s[:n]); err != nil {
			return err
		}
		if err := w.newline(); err != nil {
			return err
		}
		s = s[n:]
		first = false
	}
	return nil
}

func (w *Writer) writeString(s string) error {
	if _, err := w.w.WriteString(s); err != nil {
		return fmt.Errorf("write ldif output: %w", err)
	}
	return nil
}

func (w *Writer) newline() error {
	return w.writeString("\n")
}

// needsBase64 reports whether a value falls outside RFC 2849's SAFE-STRING
// grammar and must be emitted in the "::" base64 form.
func needsBase64(value string) bool {
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, " ") || strings.HasPrefix(value, ":") || strings.HasPrefix(value, "<") {
		return true
	}
	if strings.HasSuffix(value, " ") {
		return true
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == 0 || c == '\r' || c == '\n' || c > 127 {
			return true
		}
	}
	return false
}
