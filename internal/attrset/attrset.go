// Package attrset maintains the set of server-maintained ("system")
// attribute names that the diff engine excludes from comparison by
// default. Lookup is a precomputed case-normalized map, built once; there
// is no pattern matching at diff time.
package attrset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultNames is the fixed set of attributes a directory server
// maintains itself: the stable identifier, change sequence numbers,
// create/modify bookkeeping, and structural markers. A bulk update must
// never try to set these.
var defaultNames = []string{
	"entryuuid",
	"entrycsn",
	"entrydn",
	"createtimestamp",
	"modifytimestamp",
	"creatorsname",
	"modifiersname",
	"structuralobjectclass",
	"subschemasubentry",
	"hassubordinates",
}

// Set answers "is this attribute system-maintained" for the differ.
// The zero value is not usable; construct with Default or Load.
type Set struct {
	names map[string]struct{}
}

// Default returns the built-in system attribute set.
func Default() *Set {
	return newSet(defaultNames)
}

func newSet(names []string) *Set {
	s := &Set{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.names[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return s
}

// Contains reports whether name is a system attribute. The name is
// case-normalized before lookup.
func (s *Set) Contains(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

// Names returns the set's members, unordered.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	return out
}

// overrideFile is the YAML shape accepted by Load.
type overrideFile struct {
	SystemAttributes []string `yaml:"system_attributes"`
}

// Load reads a YAML override file and returns the set it defines,
// replacing the defaults entirely. An empty list is rejected: diffing
// with no excluded attributes at all is requested with the include flag,
// not with an empty override.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attribute override file: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse attribute override file %s: %w", path, err)
	}
	if len(f.SystemAttributes) == 0 {
		return nil, fmt.Errorf("attribute override file %s: system_attributes list is empty", path)
	}
	return newSet(f.SystemAttributes), nil
}
