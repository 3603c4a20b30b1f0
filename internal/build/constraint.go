package build

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Constraint validates one variable assignment during a recursive
// expansion and optionally hints that a branch can never reach a
// feasible terminal, letting Composite prune it before Spec.GetChild even
// recurses further.
type Constraint interface {
	// Validate checks a transition at label (0-based, ascending toward
	// the terminals) out of total variables. Returning an error prunes
	// this branch.
	Validate(ctx context.Context, state State, label, total uint32, take bool) error
	// CanPrune reports whether state, with every label before label
	// already assigned, can no longer reach any feasible terminal
	// regardless of how the remaining total-label variables (label
	// included) are assigned.
	CanPrune(state State, label, total uint32) bool
}

// BasicState is a ready-to-use State for constraints built from counters,
// flags, and a running weighted sum.
type BasicState struct {
	Counters []int
	Flags    []bool
	Sum      float64
}

func (s BasicState) Clone() State {
	counters := make([]int, len(s.Counters))
	copy(counters, s.Counters)
	flags := make([]bool, len(s.Flags))
	copy(flags, s.Flags)
	return BasicState{Counters: counters, Flags: flags, Sum: s.Sum}
}

// Hash fingerprints the state for Build's per-level memo buckets. Counters,
// flags, and the sum are encoded into one buffer and hashed with xxhash, the
// same fast-fingerprint role a simpler hash/fnv-based state hash would
// fill — one bucket per (label, fingerprint), resolved by Equal on
// collision.
func (s BasicState) Hash() uint64 {
	buf := make([]byte, 0, 8*len(s.Counters)+len(s.Flags)+8)
	var tmp [8]byte
	for _, c := range s.Counters {
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(c)))
		buf = append(buf, tmp[:]...)
	}
	for _, f := range s.Flags {
		if f {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(s.Sum))
	buf = append(buf, tmp[:]...)
	return xxhash.Sum64(buf)
}

func (s BasicState) Equal(other State) bool {
	o, ok := other.(BasicState)
	if !ok {
		return false
	}
	if len(s.Counters) != len(o.Counters) || len(s.Flags) != len(o.Flags) {
		return false
	}
	for i, c := range s.Counters {
		if c != o.Counters[i] {
			return false
		}
	}
	for i, f := range s.Flags {
		if f != o.Flags[i] {
			return false
		}
	}
	diff := s.Sum - o.Sum
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}

// CountConstraint enforces a minimum and maximum selection count over one
// of BasicState's counters.
type CountConstraint struct {
	Min, Max     int
	CounterIndex int
}

func (c CountConstraint) Validate(_ context.Context, state State, _, _ uint32, take bool) error {
	s, ok := state.(BasicState)
	if !ok {
		return fmt.Errorf("%w: CountConstraint requires BasicState", ErrInvalidConstraint)
	}
	if c.CounterIndex >= len(s.Counters) {
		return fmt.Errorf("%w: counter index %d out of bounds", ErrInvalidConstraint, c.CounterIndex)
	}
	count := s.Counters[c.CounterIndex]
	if take {
		count++
	}
	if count > c.Max {
		return fmt.Errorf("count %d exceeds maximum %d", count, c.Max)
	}
	return nil
}

func (c CountConstraint) CanPrune(state State, label, total uint32) bool {
	s, ok := state.(BasicState)
	if !ok || c.CounterIndex >= len(s.Counters) {
		return false
	}
	count := s.Counters[c.CounterIndex]
	remaining := int(total - label)
	return count+remaining < c.Min
}

// SumConstraint enforces a minimum and maximum weighted sum, one weight
// per label.
type SumConstraint struct {
	Weights  []float64
	Min, Max float64
}

func (c SumConstraint) Validate(_ context.Context, state State, label, _ uint32, take bool) error {
	s, ok := state.(BasicState)
	if !ok {
		return fmt.Errorf("%w: SumConstraint requires BasicState", ErrInvalidConstraint)
	}
	if int(label) >= len(c.Weights) {
		return fmt.Errorf("%w: label %d out of bounds for weights", ErrInvalidConstraint, label)
	}
	sum := s.Sum
	if take {
		sum += c.Weights[label]
	}
	if sum > c.Max {
		return fmt.Errorf("sum %.3f exceeds maximum %.3f", sum, c.Max)
	}
	return nil
}

func (c SumConstraint) CanPrune(state State, label, total uint32) bool {
	s, ok := state.(BasicState)
	if !ok {
		return false
	}
	maxRemaining := 0.0
	for i := label; i < total && int(i) < len(c.Weights); i++ {
		if c.Weights[i] > 0 {
			maxRemaining += c.Weights[i]
		}
	}
	return s.Sum+maxRemaining < c.Min
}

// CustomConstraint adapts plain functions to the Constraint interface.
type CustomConstraint struct {
	ValidateFunc func(ctx context.Context, state State, label, total uint32, take bool) error
	PruneFunc    func(state State, label, total uint32) bool
	Name         string
}

func (c CustomConstraint) Validate(ctx context.Context, state State, label, total uint32, take bool) error {
	if c.ValidateFunc == nil {
		return nil
	}
	if err := c.ValidateFunc(ctx, state, label, total, take); err != nil {
		if c.Name != "" {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		return err
	}
	return nil
}

func (c CustomConstraint) CanPrune(state State, label, total uint32) bool {
	if c.PruneFunc == nil {
		return false
	}
	return c.PruneFunc(state, label, total)
}

// CompositeSpec combines multiple constraints into one Spec: every
// constraint must validate a transition (and none may report CanPrune)
// for it to survive into the next label.
type CompositeSpec struct {
	vars         uint32
	constraints  []Constraint
	initialState State
}

// NewCompositeSpec builds a Spec from a fixed number of variables, an
// initial state (cloned fresh for every Run), and the constraints every
// transition must satisfy.
func NewCompositeSpec(vars uint32, initialState State, constraints ...Constraint) *CompositeSpec {
	return &CompositeSpec{vars: vars, constraints: constraints, initialState: initialState}
}

func (c *CompositeSpec) Variables() uint32   { return c.vars }
func (c *CompositeSpec) InitialState() State { return c.initialState.Clone() }

func (c *CompositeSpec) GetChild(ctx context.Context, state State, label uint32, take bool) (State, error) {
	newState := state.Clone()
	if bs, ok := newState.(BasicState); ok {
		if take && len(bs.Counters) > 0 {
			bs.Counters[0]++
		}
		newState = bs
	}
	for i, constraint := range c.constraints {
		if err := constraint.Validate(ctx, state, label, c.vars, take); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		if constraint.CanPrune(newState, label+1, c.vars) {
			return nil, fmt.Errorf("constraint %d: branch pruned", i)
		}
	}
	return newState, nil
}

func (c *CompositeSpec) IsValid(state State) bool {
	if bs, ok := state.(BasicState); ok && len(bs.Counters) > 0 {
		return bs.Counters[0] > 0
	}
	return true
}
