// Package ddstats is the statistics-counters singleton:
// monotonic counters that algorithms may bump as
// they run, read and reset sequentially (never concurrently
// with a sweep). Per the Design Note, this is realized as a generic
// "recorder" parameter rather than a compile-time switch: Recorder's no-op
// implementation, Noop, is the package default and every core sweep in
// internal/{reduce,prod2,quantify,selectsweep,count,equality} accepts a
// Recorder so a caller who never wires one in pays nothing but a handful of
// interface calls that the compiler can usually inline away.
package ddstats

import "sync/atomic"

// Recorder receives sweep progress events. Implementations must be safe to
// call from a single sweep's sequential execution; the package does not
// itself add concurrency.
type Recorder interface {
	// LevelProcessed is called once a sweep finishes a level, with the
	// number of requests/candidates handled on it.
	LevelProcessed(level uint32, count uint64)
	// LPQPush/LPQPull count levelized-priority-queue traffic.
	LPQPush()
	LPQPull()
	// NodesProduced counts nodes written to an output node file.
	NodesProduced(n uint64)
	// ArcsProduced counts arcs written to an output arc file.
	ArcsProduced(n uint64)
}

// noop implements Recorder with empty bodies; used as the package default.
type noop struct{}

func (noop) LevelProcessed(uint32, uint64) {}
func (noop) LPQPush()                      {}
func (noop) LPQPull()                      {}
func (noop) NodesProduced(uint64)          {}
func (noop) ArcsProduced(uint64)           {}

// Noop is the zero-cost default Recorder.
var Noop Recorder = noop{}

// Counters is a concrete Recorder that accumulates totals with atomic
// counters, suitable for statistics_get/print/reset call sites.
type Counters struct {
	lpqPushes, lpqPulls   uint64
	nodesTotal, arcsTotal uint64
	levelsSeen            uint64
}

var _ Recorder = (*Counters)(nil)

func (c *Counters) LevelProcessed(_ uint32, _ uint64) {
	atomic.AddUint64(&c.levelsSeen, 1)
}
func (c *Counters) LPQPush()             { atomic.AddUint64(&c.lpqPushes, 1) }
func (c *Counters) LPQPull()             { atomic.AddUint64(&c.lpqPulls, 1) }
func (c *Counters) NodesProduced(n uint64) { atomic.AddUint64(&c.nodesTotal, n) }
func (c *Counters) ArcsProduced(n uint64)  { atomic.AddUint64(&c.arcsTotal, n) }

// Snapshot is an immutable copy of a Counters' values, returned by Get.
type Snapshot struct {
	LPQPushes, LPQPulls   uint64
	NodesProduced         uint64
	ArcsProduced          uint64
	LevelsProcessed       uint64
}

// Get returns the current values without resetting them.
func (c *Counters) Get() Snapshot {
	return Snapshot{
		LPQPushes:       atomic.LoadUint64(&c.lpqPushes),
		LPQPulls:        atomic.LoadUint64(&c.lpqPulls),
		NodesProduced:   atomic.LoadUint64(&c.nodesTotal),
		ArcsProduced:    atomic.LoadUint64(&c.arcsTotal),
		LevelsProcessed: atomic.LoadUint64(&c.levelsSeen),
	}
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	atomic.StoreUint64(&c.lpqPushes, 0)
	atomic.StoreUint64(&c.lpqPulls, 0)
	atomic.StoreUint64(&c.nodesTotal, 0)
	atomic.StoreUint64(&c.arcsTotal, 0)
	atomic.StoreUint64(&c.levelsSeen, 0)
}

var global Counters

// Global returns the process-wide Counters instance, for call sites that
// want the statistics_get/print/reset API surface without threading a
// Recorder through explicitly.
func Global() *Counters { return &global }
