// Package importable computes the paths under which public items of a
// documented crate can be imported, following module nesting and `use`
// re-exports.
package importable

import (
	"cmp"
	"slices"
	"strings"
)

// Node is what the walker needs to know about one item.
type Node[ID comparable] struct {
	Name   string
	Public bool

	// Module marks an item whose Items are its members.
	Module bool
	Items  []ID

	// Use marks a re-export of Target. Name is the name it is exported as.
	// Glob re-exports every public member of Target instead.
	Use    bool
	Target ID
	Glob   bool
}

// Lookup resolves an id to its node. Items outside the document report
// false and are skipped.
type Lookup[ID comparable] func(ID) (Node[ID], bool)

// Paths walks from root, the crate's top module, and returns every
// importable path of every reachable public item, "::"-joined, sorted and
// de-duplicated. Re-export cycles are cut at the first repeated module.
func Paths[ID cmp.Ordered](root ID, lookup Lookup[ID]) map[ID][]string {
	w := &walker[ID]{
		lookup: lookup,
		paths:  make(map[ID][]string),
		onPath: make(map[ID]bool),
	}
	top, ok := lookup(root)
	if !ok || !top.Module {
		return w.paths
	}
	w.record(root, []string{top.Name})
	w.module(root, top, []string{top.Name})

	for id, ps := range w.paths {
		slices.Sort(ps)
		w.paths[id] = slices.Compact(ps)
	}
	return w.paths
}

type walker[ID cmp.Ordered] struct {
	lookup Lookup[ID]
	paths  map[ID][]string
	onPath map[ID]bool
}

func (w *walker[ID]) record(id ID, prefix []string) {
	w.paths[id] = append(w.paths[id], strings.Join(prefix, "::"))
}

func (w *walker[ID]) module(id ID, mod Node[ID], prefix []string) {
	if w.onPath[id] {
		return
	}
	w.onPath[id] = true
	defer delete(w.onPath, id)

	for _, member := range mod.Items {
		n, ok := w.lookup(member)
		if !ok || !n.Public {
			continue
		}
		if n.Use {
			w.use(n, prefix)
			continue
		}
		if n.Name == "" {
			continue
		}
		p := extend(prefix, n.Name)
		w.record(member, p)
		if n.Module {
			w.module(member, n, p)
		}
	}
}

func (w *walker[ID]) use(u Node[ID], prefix []string) {
	target, ok := w.lookup(u.Target)
	if !ok {
		return
	}
	if u.Glob {
		if target.Module {
			w.module(u.Target, target, prefix)
		}
		return
	}
	name := u.Name
	if name == "" {
		name = target.Name
	}
	p := extend(prefix, name)
	w.record(u.Target, p)
	if target.Module {
		w.module(u.Target, target, p)
	}
}

func extend(prefix []string, name string) []string {
	p := make([]string, len(prefix), len(prefix)+1)
	copy(p, prefix)
	return append(p, name)
}
