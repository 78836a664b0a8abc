package ldif

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DecodeError reports a malformed record. It is recoverable: the reader
// has already consumed the record, so callers may skip it and continue
// with the next call to Next.
type DecodeError struct {
	Record  int // 1-based record ordinal in the stream
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Record, e.Message)
}

// Reader decodes LDIF records one at a time from an input stream.
//
// Next returns io.EOF after the last record. A *DecodeError return means
// the current record was malformed and has been skipped; any other error
// is an I/O failure and the stream is dead.
type Reader struct {
	scanner *bufio.Scanner
	record  int
	sawEOF  bool
}

// maxLineBytes bounds a single unfolded LDIF line. Directory exports can
// carry large binary values (certificates, photos) base64-inline.
const maxLineBytes = 16 * 1024 * 1024

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{scanner: sc}
}

// Records returns how many records have been consumed so far, including
// malformed ones.
func (r *Reader) Records() int {
	return r.record
}

// Next decodes and returns the next record in the stream.
func (r *Reader) Next() (*Entry, error) {
	lines, err := r.nextRecordLines()
	if err != nil {
		return nil, err
	}
	r.record++

	entry, msg := parseRecord(lines)
	if msg != "" {
		return nil, &DecodeError{Record: r.record, Message: msg}
	}
	return entry, nil
}

// readLine fetches the next raw line. ok is false at end of stream.
func (r *Reader) readLine() (line string, ok bool, err error) {
	if r.sawEOF {
		return "", false, nil
	}
	if !r.scanner.Scan() {
		r.sawEOF = true
		if err := r.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("read ldif stream: %w", err)
		}
		return "", false, nil
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), true, nil
}

// nextRecordLines scans up to the next blank line (or end of stream),
// unfolding continuations and dropping comment lines and the optional
// leading version line.
func (r *Reader) nextRecordLines() ([]string, error) {
	var lines []string
	keep := func(line string) {
		if line == "" || strings.HasPrefix(line, "#") {
			return
		}
		if len(lines) == 0 && strings.HasPrefix(strings.ToLower(line), "version:") {
			return
		}
		lines = append(lines, line)
	}

	var cur string
	haveCur := false
	for {
		raw, ok, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if raw == "" {
			// Record separator. Blank lines before any content are noise.
			if haveCur {
				keep(cur)
				haveCur = false
			}
			if len(lines) > 0 {
				return lines, nil
			}
			continue
		}
		if strings.HasPrefix(raw, " ") {
			// Folded continuation of the previous line.
			if haveCur {
				cur += raw[1:]
			}
			continue
		}
		if haveCur {
			keep(cur)
		}
		cur = raw
		haveCur = true
	}

	if haveCur {
		keep(cur)
	}
	if len(lines) > 0 {
		return lines, nil
	}
	return nil, io.EOF
}

// parseRecord turns unfolded lines into an Entry. A non-empty second
// return is a decode failure message.
func parseRecord(lines []string) (*Entry, string) {
	name, value, msg := parseLine(lines[0])
	if msg != "" {
		return nil, msg
	}
	if name != "dn" {
		return nil, fmt.Sprintf("record does not start with dn: %q", lines[0])
	}
	entry := NewEntry(value)
	for _, line := range lines[1:] {
		name, value, msg := parseLine(line)
		if msg != "" {
			return nil, msg
		}
		entry.AddValue(name, value)
	}
	return entry, ""
}

func parseLine(line string) (name, value, msg string) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", fmt.Sprintf("malformed line %q", line)
	}
	name = strings.ToLower(strings.TrimSpace(line[:colon]))
	rest := line[colon+1:]
	switch {
	case strings.HasPrefix(rest, ":"):
		enc := strings.TrimLeft(rest[1:], " ")
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return "", "", fmt.Sprintf("attribute %s: bad base64 value: %v", name, err)
		}
		return name, string(raw), ""
	case strings.HasPrefix(rest, "<"):
		return "", "", fmt.Sprintf("attribute %s: URL-valued attributes are not supported", name)
	default:
		return name, strings.TrimLeft(rest, " "), ""
	}
}
