package zdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/count"
)

// Size is zdd_size, parameterized by the semiring the caller wants the
// count expressed in (plain "size" has no domain-gap accounting,
// unlike bdd_satcount — see internal/count's Size vs SatCount).
func Size[T any](z ZDD, sr count.Semiring[T], rec ddstats.Recorder) (T, error) {
	return count.Size(z.nf, sr, rec)
}
