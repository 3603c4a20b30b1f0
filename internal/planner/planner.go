// Package planner resolves Access_Mode.Auto and Memory_Mode.Auto
// into concrete choices, using the level-cut estimates a levelized
// file's writer recorded (internal/lfile) and, for memory, the host's free
// RAM as reported by gopsutil — the same library arx-os-arxos/arx-backend
// uses for its own capacity checks.
package planner

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/zzenonn/go-dd/execpolicy"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// nodeRecordBytes approximates the in-memory footprint of one buffered Node
// or priority-queue entry, for sizing estimateBytes. It need not be exact;
// it only has to keep ChooseMemory's Internal/External call on the right
// side of "fits comfortably."
const nodeRecordBytes = 48

// Config tunes the planner's Auto-mode decisions. AvailableMemory is a
// seam for tests; production code leaves it as systemAvailableMemory.
//
// RandomAccessWidthThreshold has no established value from a benchmark
// run against real workloads yet: it is a calibration-pending constant,
// not a derived one.
type Config struct {
	RandomAccessWidthThreshold uint64
	AvailableMemory            func() (uint64, error)
}

// DefaultConfig returns the planner's default tuning.
func DefaultConfig() Config {
	return Config{
		RandomAccessWidthThreshold: 1 << 20,
		AvailableMemory:            systemAvailableMemory,
	}
}

func systemAvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// ChooseAccess resolves an Access setting for a sweep whose input is
// described by meta. A concrete (non-Auto) setting passes through
// unchanged.
func (c Config) ChooseAccess(policy execpolicy.Access, meta lfile.Meta) execpolicy.Access {
	if policy != execpolicy.AccessAuto {
		return policy
	}
	if meta.Kind != lfile.KindNode || !meta.Canonical {
		// Random access requires a canonical node file; anything else
		// falls back to the priority queue.
		return execpolicy.AccessPriorityQueue
	}
	if meta.Width == 0 || meta.Width <= c.RandomAccessWidthThreshold {
		return execpolicy.AccessRandomAccess
	}
	return execpolicy.AccessPriorityQueue
}

// ChooseMemory resolves a Memory setting for a sweep whose auxiliary
// structures are expected to hold on the order of meta's two-level cut
// worth of records.
func (c Config) ChooseMemory(policy execpolicy.Memory, meta lfile.Meta) execpolicy.Memory {
	if policy != execpolicy.MemoryAuto {
		return policy
	}
	avail, err := c.AvailableMemory()
	if err != nil {
		// Fail safe toward the option that cannot exhaust RAM.
		return execpolicy.MemoryExternal
	}
	estimate := estimateBytes(meta)
	// Leave headroom: never plan to use more than a quarter of what's free.
	if estimate <= avail/4 {
		return execpolicy.MemoryInternal
	}
	return execpolicy.MemoryExternal
}

func estimateBytes(meta lfile.Meta) uint64 {
	return meta.Max2LevelCut[lfile.CutAll] * nodeRecordBytes
}
