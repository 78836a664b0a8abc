package ldif

// ChangeType tags a ChangeRecord with its operation kind.
type ChangeType int

const (
	ChangeAdd ChangeType = iota
	ChangeDelete
	ChangeModify
)

// String returns the LDIF changetype keyword.
func (t ChangeType) String() string {
	switch t {
	case ChangeAdd:
		return "add"
	case ChangeDelete:
		return "delete"
	case ChangeModify:
		return "modify"
	default:
		return "unknown"
	}
}

// AttrOp is one attribute operation inside a modify record: an attribute
// name and the values the operation applies to. For a delete operation an
// empty Values slice means "remove the attribute entirely".
type AttrOp struct {
	Name   string
	Values []string
}

// Ops collects the attribute operations of a modify record. Within a
// record the serialized order is Adds, then Deletes, then Replaces; that
// ordering is part of the output contract, not a free choice.
type Ops struct {
	Adds     []AttrOp
	Deletes  []AttrOp
	Replaces []AttrOp
}

// Empty reports whether the set of operations is a no-op.
func (o Ops) Empty() bool {
	return len(o.Adds) == 0 && len(o.Deletes) == 0 && len(o.Replaces) == 0
}

// Count returns the total number of attribute operations.
func (o Ops) Count() int {
	return len(o.Adds) + len(o.Deletes) + len(o.Replaces)
}

// ChangeRecord is one unit of diff output. Exactly one of the payload
// fields is meaningful, selected by Type: Entry for ChangeAdd, Mods for
// ChangeModify; ChangeDelete carries only the DN.
type ChangeRecord struct {
	DN    string
	Type  ChangeType
	Entry *Entry
	Mods  Ops
}
