package zdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/convert"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// FromBDD is zdd_from_bdd: reinterprets f (a *lfile.NodeFile belonging to a
// BDD whose support lies within dom) as the ZDD family of subsets of dom it
// accepts. Callers in package bdd pass their BDD's File(); this package
// never imports bdd to avoid the import cycle bdd.FromZDD would otherwise
// create.
func FromBDD(f *lfile.NodeFile, dom []uint32, rec ddstats.Recorder) (ZDD, error) {
	nf, err := convert.ToZDD(f, dom, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}
