package ddcore

import "fmt"

// Node is the triple (uid, low, high). For the single special terminal node
// used to represent a constant diagram, Low and High are both Nil.
//
// Invariants (checked by the writer that produces canonical files, not by
// this type itself — Node is a plain value):
//   - Ordered: if Low (resp. High) is internal, uid.Label() < Low.Label()
//     (resp. < High.Label()).
//   - Reduced: Low != High.
//   - No duplicate (Low, High) pair among nodes sharing a level.
type Node struct {
	UID  UID
	Low  Pointer
	High Pointer
}

// TerminalNode returns the 1-node representation of a constant diagram.
func TerminalNode(value bool) Node {
	return Node{UID: TerminalUID(value), Low: NilPointer(), High: NilPointer()}
}

// IsTerminal reports whether n is a terminal node.
func (n Node) IsTerminal() bool { return n.UID.IsTerminal() }

// Child returns Low when high is false, High otherwise — the cofactor for
// assigning the node's variable to that boolean value.
func (n Node) Child(high bool) Pointer {
	if high {
		return n.High
	}
	return n.Low
}

func (n Node) String() string {
	return fmt.Sprintf("%s: %s -> %s", n.UID, n.Low, n.High)
}

// ChildrenLess orders two nodes' children descending by (High, Low), the
// comparator Reduce uses to assign canonical ids (from max_id downward)
// within one level.
func ChildrenLess(a, b Node) bool {
	if c := Compare(a.High, b.High); c != 0 {
		return c > 0
	}
	return Compare(a.Low, b.Low) > 0
}

// SameChildren reports whether a and b have identical (Low, High) — the
// condition under which Reduce Rule 2 collapses duplicates on a level.
func SameChildren(a, b Node) bool {
	return Compare(a.Low, b.Low) == 0 && Compare(a.High, b.High) == 0
}
