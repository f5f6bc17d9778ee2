package recdb

import "sort"

// Tree is the read-only parent/child index derived from one virtual file's
// records. Built once, never mutated afterwards.
//
// Layout follows the arena + index pattern: records stay in their flat
// decode-order slice and the tree holds pointers into it, indexed by
// object id through a side map.
type Tree struct {
	byID        map[uint32]*Record
	children    map[uint32][]*Record
	roots       []*Record
	quarantined []*Record
}

// NewTree indexes records into a component tree. Malformed markers are
// excluded. A record whose parent id references no known object id is
// quarantined rather than dropped; duplicate object ids keep the first
// occurrence (the symbol resolver raises the conflict as fatal).
func NewTree(records []Record) *Tree {
	t := &Tree{
		byID:     make(map[uint32]*Record, len(records)),
		children: make(map[uint32][]*Record),
	}

	for i := range records {
		rec := &records[i]
		if rec.Kind == KindMalformed || rec.ObjectID == 0 {
			continue
		}
		if _, dup := t.byID[rec.ObjectID]; dup {
			continue
		}
		t.byID[rec.ObjectID] = rec
	}

	for i := range records {
		rec := &records[i]
		if rec.Kind == KindMalformed || rec.ObjectID == 0 {
			continue
		}
		if t.byID[rec.ObjectID] != rec {
			continue // duplicate, first occurrence won
		}
		switch {
		case rec.ParentID == 0:
			t.roots = append(t.roots, rec)
		case t.byID[rec.ParentID] == nil:
			t.quarantined = append(t.quarantined, rec)
		default:
			t.children[rec.ParentID] = append(t.children[rec.ParentID], rec)
		}
	}

	// Deterministic sibling order: sequence number, then object id.
	for id := range t.children {
		kids := t.children[id]
		sort.Slice(kids, func(a, b int) bool {
			if kids[a].Seq != kids[b].Seq {
				return kids[a].Seq < kids[b].Seq
			}
			return kids[a].ObjectID < kids[b].ObjectID
		})
	}
	sort.Slice(t.roots, func(a, b int) bool {
		if t.roots[a].Seq != t.roots[b].Seq {
			return t.roots[a].Seq < t.roots[b].Seq
		}
		return t.roots[a].ObjectID < t.roots[b].ObjectID
	})

	return t
}

// ByID returns the record with the given object id.
func (t *Tree) ByID(id uint32) (*Record, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Children returns the ordered children of the given object id.
func (t *Tree) Children(id uint32) []*Record {
	return t.children[id]
}

// Roots returns the ordered records with parent id 0.
func (t *Tree) Roots() []*Record {
	return t.roots
}

// Quarantined returns records whose parent id resolved to nothing.
func (t *Tree) Quarantined() []*Record {
	return t.quarantined
}
