package store

import (
	"sort"

	"github.com/google/btree"

	"github.com/launchdash/launchdash/pkg/types"
)

const indexDegree = 16

// payloadItem orders records by payload mass, then by source position so
// equal masses stay distinct.
type payloadItem struct {
	kg  float64
	pos int
}

func (i payloadItem) Less(than btree.Item) bool {
	o := than.(payloadItem)
	if i.kg != o.kg {
		return i.kg < o.kg
	}
	return i.pos < o.pos
}

type payloadIndex struct {
	tree *btree.BTree
}

func newPayloadIndex(records []types.LaunchRecord) *payloadIndex {
	idx := &payloadIndex{tree: btree.New(indexDegree)}
	for pos, r := range records {
		idx.tree.ReplaceOrInsert(payloadItem{kg: r.PayloadMassKg, pos: pos})
	}
	return idx
}

// between returns the source positions of records with lo <= kg <= hi,
// sorted ascending.
func (idx *payloadIndex) between(lo, hi float64) []int {
	var out []int
	idx.tree.AscendGreaterOrEqual(payloadItem{kg: lo, pos: -1}, func(it btree.Item) bool {
		item := it.(payloadItem)
		if item.kg > hi {
			return false
		}
		out = append(out, item.pos)
		return true
	})
	sort.Ints(out)
	return out
}

func (idx *payloadIndex) bounds() (lo, hi float64, ok bool) {
	if idx.tree.Len() == 0 {
		return 0, 0, false
	}
	return idx.tree.Min().(payloadItem).kg, idx.tree.Max().(payloadItem).kg, true
}
