package diff

import (
	"github.com/ldaputil/ldifdiff/internal/attrset"
	"github.com/ldaputil/ldifdiff/internal/ldif"
)

// Builder turns entry pairs into change records, applying the
// system-attribute policy: server-maintained attributes are excluded from
// comparison and stripped from adds unless includeSystem is set.
type Builder struct {
	system        *attrset.Set
	includeSystem bool
}

// NewBuilder creates a Builder over the given system-attribute set.
func NewBuilder(system *attrset.Set, includeSystem bool) *Builder {
	return &Builder{system: system, includeSystem: includeSystem}
}

// Excluded is the differ's exclusion predicate under this builder's
// policy.
func (b *Builder) Excluded(name string) bool {
	return !b.includeSystem && b.system.Contains(name)
}

// Modify diffs a matched pair and returns a modify record addressed at
// new's DN, the post-rename name a modify must target. Returns nil when
// the entries are identical under the exclusion policy: identical entries
// produce no record at all.
func (b *Builder) Modify(old, new *ldif.Entry) *ldif.ChangeRecord {
	ops := DiffAttributes(old.Attributes, new.Attributes, b.Excluded)
	if ops.Empty() {
		return nil
	}
	return &ldif.ChangeRecord{
		DN:   new.DN,
		Type: ldif.ChangeModify,
		Mods: ops,
	}
}

// Add returns an add record for an entry only the target snapshot has.
// Unless includeSystem is set, system attributes are stripped first: an
// add must not instruct the server to set attributes it maintains itself.
func (b *Builder) Add(entry *ldif.Entry) *ldif.ChangeRecord {
	out := entry
	if !b.includeSystem {
		out = entry.Clone()
		for name := range out.Attributes {
			if b.system.Contains(name) {
				delete(out.Attributes, name)
			}
		}
	}
	return &ldif.ChangeRecord{
		DN:    out.DN,
		Type:  ldif.ChangeAdd,
		Entry: out,
	}
}

// Delete returns a delete record addressed at the given DN.
func (b *Builder) Delete(dn string) *ldif.ChangeRecord {
	return &ldif.ChangeRecord{
		DN:   dn,
		Type: ldif.ChangeDelete,
	}
}
