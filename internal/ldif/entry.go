package ldif

import "strings"

// UUIDAttr is the attribute carrying an entry's stable identifier.
// It is assigned by the server at creation time and survives renames,
// which is what makes it usable as a matching key across snapshots.
const UUIDAttr = "entryuuid"

// Entry is one directory record: a distinguished name plus a multi-valued
// attribute map. Attribute names are stored lowercase; value order within
// an attribute is preserved as read.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

// NewEntry creates an empty Entry with the given DN.
func NewEntry(dn string) *Entry {
	return &Entry{
		DN:         dn,
		Attributes: make(map[string][]string),
	}
}

// UUID returns the entry's stable identifier, or "" if the entry does not
// carry one. Entries without a UUID cannot participate in matching.
func (e *Entry) UUID() string {
	vals := e.Attributes[UUIDAttr]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// AddValue appends a value to the named attribute, normalizing the name.
func (e *Entry) AddValue(name, value string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string][]string)
	}
	name = strings.ToLower(name)
	e.Attributes[name] = append(e.Attributes[name], value)
}

// SetValues replaces all values of the named attribute.
func (e *Entry) SetValues(name string, values ...string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string][]string)
	}
	e.Attributes[strings.ToLower(name)] = values
}

// Values returns the values of the named attribute, nil if absent.
func (e *Entry) Values(name string) []string {
	if e.Attributes == nil {
		return nil
	}
	return e.Attributes[strings.ToLower(name)]
}

// Clone returns a deep copy of the entry. The store keeps clones so that
// callers are free to mutate what they loaded.
func (e *Entry) Clone() *Entry {
	c := &Entry{
		DN:         e.DN,
		Attributes: make(map[string][]string, len(e.Attributes)),
	}
	for name, vals := range e.Attributes {
		c.Attributes[name] = append([]string(nil), vals...)
	}
	return c
}
