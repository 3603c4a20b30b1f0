package bdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/count"
)

// SatCount is bdd_satcount: the domain-aware solution count, parameterized
// by the semiring the caller wants it expressed in.
func SatCount[T any](f BDD, sr count.Semiring[T], rec ddstats.Recorder) (T, error) {
	return count.SatCount(f.nf, sr, rec)
}

// Size is the plain node-reachable-terminal count, with no domain-gap
// accounting — useful when no domain has been installed via domain.Set.
func Size[T any](f BDD, sr count.Semiring[T], rec ddstats.Recorder) (T, error) {
	return count.Size(f.nf, sr, rec)
}
