// Package lineage computes the instance ancestry relation declared in
// run metadata: the transitive closure of parent links, and the
// placeholder context an instance contributes to template resolution.
package lineage

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/waypath/api"
)

// MaxRounds is the safety cap on closure iteration. Cyclic or
// pathologically deep parent graphs stop here with whatever partial
// closure exists rather than looping forever.
const MaxRounds = 64

// Ancestry holds the transitive parent closure for every instance.
// Instances are indexed densely in metadata declaration order;
// parent names that were never declared still receive an index so
// membership queries about them stay well defined.
type Ancestry struct {
	names    []string
	index    map[string]uint32
	closures []*roaring.Bitmap
}

// Compute derives the ancestry closure from the metadata's direct
// parent links by iterating union steps until no closure grows,
// capped at MaxRounds.
func Compute(meta *api.Meta) *Ancestry {
	a := &Ancestry{index: make(map[string]uint32)}

	intern := func(name string) uint32 {
		if i, ok := a.index[name]; ok {
			return i
		}
		i := uint32(len(a.names))
		a.index[name] = i
		a.names = append(a.names, name)
		return i
	}

	for _, name := range meta.Order {
		intern(name)
		for _, p := range meta.Instances[name].Parents {
			intern(p)
		}
	}

	a.closures = make([]*roaring.Bitmap, len(a.names))
	for i := range a.closures {
		a.closures[i] = roaring.New()
	}
	for _, name := range meta.Order {
		i := a.index[name]
		for _, p := range meta.Instances[name].Parents {
			a.closures[i].Add(a.index[p])
		}
	}

	changed := true
	for round := 0; round < MaxRounds && changed; round++ {
		changed = false
		for i := range a.closures {
			before := a.closures[i].GetCardinality()
			grown := a.closures[i].Clone()
			iter := a.closures[i].Iterator()
			for iter.HasNext() {
				grown.Or(a.closures[iter.Next()])
			}
			if grown.GetCardinality() > before {
				a.closures[i] = grown
				changed = true
			}
		}
	}

	return a
}

// Of returns the ancestor names of inst in index order. Unknown
// instances have no ancestors.
func (a *Ancestry) Of(inst string) []string {
	i, ok := a.index[inst]
	if !ok {
		return nil
	}
	var out []string
	iter := a.closures[i].Iterator()
	for iter.HasNext() {
		out = append(out, a.names[iter.Next()])
	}
	return out
}

// Contains reports whether ancestor is transitively reachable from
// inst through parent links.
func (a *Ancestry) Contains(inst, ancestor string) bool {
	i, ok := a.index[inst]
	if !ok {
		return false
	}
	j, ok := a.index[ancestor]
	if !ok {
		return false
	}
	return a.closures[i].Contains(j)
}
