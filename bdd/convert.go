package bdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/convert"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// FromZDD is bdd_from_zdd: reinterprets z (a *lfile.NodeFile belonging to a
// ZDD family of subsets of dom) as the BDD computing its characteristic
// function over dom. Callers in package zdd pass their ZDD's File(); this
// package never imports zdd to avoid the import cycle zdd.FromBDD would
// otherwise create.
func FromZDD(z *lfile.NodeFile, dom []uint32, rec ddstats.Recorder) (BDD, error) {
	nf, err := convert.ToBDD(z, dom, rec)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}
