package bdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/reduce"
	"github.com/zzenonn/go-dd/internal/selectsweep"
)

// Restrict is bdd_restrict: fixes every label gen names to its assigned
// value and cofactors it away.
func Restrict(f BDD, gen selectsweep.Generator, rec ddstats.Recorder) (BDD, error) {
	nf, err := selectsweep.Run(f.nf, gen, selectsweep.Restrict, reduce.BDD, rec)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}
