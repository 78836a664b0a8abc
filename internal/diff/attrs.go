package diff

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/ldaputil/ldifdiff/internal/ldif"
)

// DiffAttributes compares two attribute maps and returns the operations
// that transform old into new, skipping attributes for which excluded
// returns true.
//
// Comparison is under set semantics: duplicate values collapse, value
// order is ignored, and values are NFC-normalized before comparison so
// that byte-different spellings of the same text do not produce churn.
//
// Per attribute the result is minimal in record terms: equal sets yield
// nothing; fully disjoint sets yield a single replace; overlapping sets
// yield a targeted delete of removed values plus an add of new ones,
// leaving common values untouched. An attribute present in old with no
// values in new is deleted outright.
//
// Attribute names are visited in sorted order so output is stable.
func DiffAttributes(old, new map[string][]string, excluded func(string) bool) ldif.Ops {
	var ops ldif.Ops

	for _, name := range sortedKeys(old) {
		if excluded(name) {
			continue
		}
		newVals := dedupe(new[name])
		if len(newVals) == 0 {
			// Attribute gone (or present with no values, which a decoder
			// normally never produces): remove it entirely.
			ops.Deletes = append(ops.Deletes, ldif.AttrOp{Name: name})
			continue
		}
		oldVals := dedupe(old[name])
		onlyOld := subtract(oldVals, newVals)
		onlyNew := subtract(newVals, oldVals)
		if len(onlyOld) == 0 && len(onlyNew) == 0 {
			continue // value-set equal
		}
		if len(onlyOld) == len(oldVals) && len(onlyNew) == len(newVals) {
			// No common value: one replace beats a delete + add pair.
			ops.Replaces = append(ops.Replaces, ldif.AttrOp{Name: name, Values: newVals})
			continue
		}
		if len(onlyOld) > 0 {
			ops.Deletes = append(ops.Deletes, ldif.AttrOp{Name: name, Values: onlyOld})
		}
		if len(onlyNew) > 0 {
			ops.Adds = append(ops.Adds, ldif.AttrOp{Name: name, Values: onlyNew})
		}
	}

	for _, name := range sortedKeys(new) {
		if excluded(name) {
			continue
		}
		if _, ok := old[name]; ok {
			continue
		}
		vals := dedupe(new[name])
		if len(vals) == 0 {
			continue
		}
		ops.Adds = append(ops.Adds, ldif.AttrOp{Name: name, Values: vals})
	}

	return ops
}

// canonical is the comparison form of a value. Values compare equal when
// their NFC normalizations are byte-equal.
func canonical(v string) string {
	return norm.NFC.String(v)
}

// dedupe collapses duplicate values, preserving first-occurrence order.
func dedupe(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		c := canonical(v)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, v)
	}
	return out
}

// subtract returns the values of a not present in b, in a's order.
func subtract(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[canonical(v)] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := inB[canonical(v)]; !ok {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
