// Package build implements the legacy in-memory construction front-end,
// a build-from-a-user-supplied-recursive-specification path: a top-down,
// state-driven recursive expansion that produces an
// unreduced arc file, the same shape internal/prod2 and internal/quantify
// hand to internal/reduce. Unlike those sweeps, which walk an
// already-built node file, Run discovers the diagram's shape on the fly
// by calling back into a Spec for every variable assignment — this is the
// entry point a caller without an existing diagram starts from.
//
// Run itself applies no BDD/ZDD-specific collapsing rule; every
// recursive call always yields a node. internal/reduce's Rule 1/Rule 2
// sweep is what turns the raw expansion into a canonical diagram,
// exactly as it does for internal/prod2's output. Run's own
// responsibility is purely state memoization: without it, re-exploring
// the same constraint state at the same level would make the recursive
// expansion itself exponential before Reduce ever ran.
package build

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// State is the constraint state threaded through a recursive expansion.
// Applications implement this for their own problem domain; Clone gives
// branching calls an independent copy, Hash/Equal drive Run's
// per-level memoization.
type State interface {
	Clone() State
	Hash() uint64
	Equal(other State) bool
}

// SkipState wraps a state and directs Run to jump straight to label
// ResumeAt instead of recursing one label at a time, for problems where a
// choice forces a long run of subsequent variables to a fixed value.
type SkipState struct {
	State    State
	ResumeAt uint32
}

// Spec is the problem specification a recursive expansion explores.
// Variables are numbered 0..Variables()-1, label 0 nearest the root,
// ascending toward the terminals — the same orientation every other
// sweep in this module uses for ddcore.Pointer labels.
type Spec interface {
	// Variables returns the number of decision variables.
	Variables() uint32
	// InitialState returns the state the root node branches from.
	InitialState() State
	// GetChild returns the state reached by assigning label's variable to
	// take. An error prunes this branch (the assignment collapses to the
	// false terminal) rather than aborting the whole build.
	GetChild(ctx context.Context, state State, label uint32, take bool) (State, error)
	// IsValid reports whether a state reached after every variable has
	// been assigned represents a member of the family being built.
	IsValid(state State) bool
}

// Config tunes a Run call.
type Config struct {
	// Workers bounds how many GetChild branches may be in flight at once.
	// 1 (the default) runs the expansion sequentially.
	Workers int
	// MemoryLimit caps the number of nodes Run will materialize in
	// memory before failing with ddcore.ErrResourceExhausted. 0 means no
	// limit.
	MemoryLimit int64
	// Timeout bounds the whole Run call; 0 means no timeout.
	Timeout time.Duration
	// Compress zstd-compresses the arc file Run hands back, worthwhile once
	// a build's output is large enough that shrinking the intermediate file
	// Reduce will stream back in outweighs the compress/decompress pass.
	Compress bool
}

// Option configures a Config.
type Option func(*Config)

// WithParallel sets the number of concurrent GetChild branches. workers<=0
// is treated as sequential.
func WithParallel(workers int) Option {
	return func(c *Config) { c.Workers = workers }
}

// WithMemoryLimit caps the number of in-memory nodes Run may materialize.
func WithMemoryLimit(nodes int64) Option {
	return func(c *Config) { c.MemoryLimit = nodes }
}

// WithTimeout bounds the duration of a Run call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithCompression zstd-compresses Run's output arc file on disk; see
// lfile.WithCompression.
func WithCompression() Option {
	return func(c *Config) { c.Compress = true }
}

func newConfig(opts ...Option) Config {
	cfg := Config{Workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type memoEntry struct {
	state State
	ptr   ddcore.Pointer
}

type builder struct {
	spec  Spec
	n     uint32
	limit int64

	mu           sync.Mutex
	memo         map[uint32]map[uint64][]memoEntry
	nodesByLevel map[uint32][]ddcore.Node
	total        int64

	sem chan struct{} // nil runs sequentially
}

// Run expands spec top-down from its initial state and returns the
// resulting unreduced arc file. Callers finish the result with
// internal/reduce, using reduce.BDD or reduce.ZDD depending on which
// semantics the spec's terminal/IsValid logic intends — Run itself is
// agnostic to that choice.
func Run(ctx context.Context, spec Spec, rec ddstats.Recorder, opts ...Option) (*lfile.ArcFile, error) {
	if rec == nil {
		rec = ddstats.Noop
	}
	cfg := newConfig(opts...)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	b := &builder{
		spec:         spec,
		n:            spec.Variables(),
		limit:        cfg.MemoryLimit,
		memo:         make(map[uint32]map[uint64][]memoEntry),
		nodesByLevel: make(map[uint32][]ddcore.Node),
	}
	if cfg.Workers > 1 {
		b.sem = make(chan struct{}, cfg.Workers)
	}

	root, err := b.resolve(ctx, spec.InitialState(), 0)
	if err != nil {
		return nil, err
	}

	var arcOpts []lfile.ArcFileOption
	if cfg.Compress {
		arcOpts = append(arcOpts, lfile.WithCompression())
	}
	w, err := lfile.CreateArcFile(arcOpts...)
	if err != nil {
		return nil, err
	}
	for label := uint32(0); label < b.n; label++ {
		nodes := b.nodesByLevel[label]
		if len(nodes) == 0 {
			continue
		}
		for _, n := range nodes {
			if err := w.Push(ddcore.Arc{Source: n.UID.As(false), Target: n.Low}); err != nil {
				return nil, err
			}
			if err := w.Push(ddcore.Arc{Source: n.UID.As(true), Target: n.High}); err != nil {
				return nil, err
			}
			rec.ArcsProduced(2)
		}
		w.PushLevel(label, uint64(len(nodes)))
		rec.LevelProcessed(label, uint64(len(nodes)))
	}
	w.SetRoot(root)
	return w.Close()
}

// resolve returns the pointer representing state at label, recursing
// toward the terminal level (b.n) and memoizing per (label, state) so
// that two branches reaching an equivalent state share one node.
func (b *builder) resolve(ctx context.Context, state State, label uint32) (ddcore.Pointer, error) {
	select {
	case <-ctx.Done():
		return ddcore.Pointer{}, ctx.Err()
	default:
	}

	if label >= b.n {
		return ddcore.NewTerminal(b.spec.IsValid(state), false), nil
	}

	h := state.Hash()
	b.mu.Lock()
	if bucket, ok := b.memo[label][h]; ok {
		for _, e := range bucket {
			if e.state.Equal(state) {
				b.mu.Unlock()
				return e.ptr, nil
			}
		}
	}
	b.mu.Unlock()

	low, high, err := b.resolveChildren(ctx, state, label)
	if err != nil {
		return ddcore.Pointer{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Re-check under lock: a concurrent branch may have memoized the same
	// state while this one was recursing.
	if bucket, ok := b.memo[label][h]; ok {
		for _, e := range bucket {
			if e.state.Equal(state) {
				return e.ptr, nil
			}
		}
	}

	if b.limit > 0 && b.total >= b.limit {
		return ddcore.Pointer{}, ddcore.ErrResourceExhausted
	}
	id := uint64(len(b.nodesByLevel[label]))
	uid, err := ddcore.InternalUID(label, id)
	if err != nil {
		return ddcore.Pointer{}, err
	}
	b.nodesByLevel[label] = append(b.nodesByLevel[label], ddcore.Node{UID: uid, Low: low, High: high})
	b.total++
	ptr := uid.As(false)
	if b.memo[label] == nil {
		b.memo[label] = make(map[uint64][]memoEntry)
	}
	b.memo[label][h] = append(b.memo[label][h], memoEntry{state: state, ptr: ptr})
	return ptr, nil
}

func (b *builder) resolveChildren(ctx context.Context, state State, label uint32) (low, high ddcore.Pointer, err error) {
	branch := func(take bool) (ddcore.Pointer, error) {
		next, cerr := b.spec.GetChild(ctx, state, label, take)
		if cerr != nil {
			return ddcore.NewTerminal(false, false), nil
		}
		if skip, ok := next.(*SkipState); ok {
			return b.resolve(ctx, skip.State, skip.ResumeAt)
		}
		return b.resolve(ctx, next, label+1)
	}

	if b.sem == nil {
		low, err = branch(false)
		if err != nil {
			return
		}
		high, err = branch(true)
		return
	}

	select {
	case b.sem <- struct{}{}:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer func() { <-b.sem }()
			l, e := branch(false)
			if e != nil {
				return e
			}
			low = l
			return nil
		})
		h, e := branch(true)
		if e != nil {
			_ = g.Wait()
			return low, high, e
		}
		high = h
		if e := g.Wait(); e != nil {
			return low, high, e
		}
		_ = gctx
		return low, high, nil
	default:
		low, err = branch(false)
		if err != nil {
			return
		}
		high, err = branch(true)
		return
	}
}
