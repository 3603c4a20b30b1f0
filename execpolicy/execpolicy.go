// Package execpolicy is the complete "configuration" surface for the
// algorithmic core: a plain value record with three orthogonal settings,
// each defaulting to Auto, accepted by the public BDD/ZDD operations that
// take a Policy parameter.
package execpolicy

// Access names whether a sweep exclusively uses random access or
// priority queues, or automatically picks based on input width. No
// operation reads it: sweeps always look nodes up through
// lfile.NodeRandomAccess and queue through lpq.Unbucketed, and
// internal/planner, which maps an Access or Memory setting to a concrete
// choice, is called by no operation.
type Access int

const (
	// AccessAuto picks Random_Access when an input is narrow enough.
	AccessAuto Access = iota
	// AccessRandomAccess always uses random access.
	//
	// Precondition: at least one input's narrowest level fits the planner's
	// threshold and that input is canonical. Nothing checks it:
	// internal/planner.ChooseAccess returns a non-Auto setting unchanged.
	AccessRandomAccess
	// AccessPriorityQueue always uses levelized priority queues.
	AccessPriorityQueue
)

func (a Access) String() string {
	switch a {
	case AccessRandomAccess:
		return "Random_Access"
	case AccessPriorityQueue:
		return "Priority_Queue"
	default:
		return "Auto"
	}
}

// Memory names whether auxiliary structures (priority queues, sorters)
// are backed by internal or external memory, or chosen automatically. Like
// Access, it is read by no operation.
type Memory int

const (
	// MemoryAuto picks internal memory as long as it is predicted safe.
	MemoryAuto Memory = iota
	// MemoryInternal always uses internal memory; may crash the process if
	// an input or output does not fit.
	MemoryInternal
	// MemoryExternal always uses external memory.
	MemoryExternal
)

func (m Memory) String() string {
	switch m {
	case MemoryInternal:
		return "Internal"
	case MemoryExternal:
		return "External"
	default:
		return "Auto"
	}
}

// Quantify dictates the multi-variable quantification strategy.
type Quantify int

const (
	// QuantifyAuto picks Singleton for one variable and Nested for more,
	// once, before any pass runs; it does not switch strategy mid-way.
	QuantifyAuto Quantify = iota
	// QuantifyNested eliminates every variable in one fused in-memory
	// recursive pass (internal/quantify.Nested).
	QuantifyNested
	// QuantifyPartial eliminates one variable per pass, deepest first; each
	// pass produces a complete diagram before the next starts
	// (internal/quantify.Partial).
	QuantifyPartial
	// QuantifySingleton quantifies one variable at a time, reducing between.
	QuantifySingleton
)

func (q Quantify) String() string {
	switch q {
	case QuantifyNested:
		return "Nested"
	case QuantifyPartial:
		return "Partial"
	case QuantifySingleton:
		return "Singleton"
	default:
		return "Auto"
	}
}

// Policy bundles the three settings. The zero value is all-Auto, matching
// every public operation's implicit default. Of the three, only Quantify
// changes what an operation does (bdd.Exists and bdd.Forall).
//
// Go has no operator overloading, so the source's `access::Random_Access &
// memory::External` composition becomes chained With* calls:
//
//	execpolicy.Default().WithAccess(execpolicy.AccessRandomAccess).WithQuantify(execpolicy.QuantifyNested)
type Policy struct {
	access   Access
	memory   Memory
	quantify Quantify
}

// Default returns the all-Auto policy.
func Default() Policy { return Policy{} }

func (p Policy) Access() Access     { return p.access }
func (p Policy) Memory() Memory     { return p.memory }
func (p Policy) Quantify() Quantify { return p.quantify }

// WithAccess returns a copy of p with the access mode changed.
func (p Policy) WithAccess(a Access) Policy { p.access = a; return p }

// WithMemory returns a copy of p with the memory mode changed.
func (p Policy) WithMemory(m Memory) Policy { p.memory = m; return p }

// WithQuantify returns a copy of p with the quantify strategy changed.
func (p Policy) WithQuantify(q Quantify) Policy { p.quantify = q; return p }

// Equal reports whether two policies have identical settings. Execution-
// policy invariance (spec testable property) requires that for every valid
// Policy, an operation's output is bit-equal to the default policy's
// output, even when the policies are not Equal.
func (p Policy) Equal(other Policy) bool { return p == other }
