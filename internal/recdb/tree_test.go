package recdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeHierarchy(t *testing.T) {
	records := []Record{
		{ObjectID: 1, ParentID: 0, Kind: KindController, Name: "Ctrl"},
		{ObjectID: 2, ParentID: 1, Kind: KindProgram, Name: "Main", Seq: 1},
		{ObjectID: 3, ParentID: 1, Kind: KindTag, Name: "Motor", Seq: 0},
		{ObjectID: 4, ParentID: 2, Kind: KindRoutine, Name: "Cycle"},
	}

	tree := NewTree(records)

	roots := tree.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "Ctrl", roots[0].Name)

	kids := tree.Children(1)
	require.Len(t, kids, 2)
	// Sibling order is sequence number, then object id.
	assert.Equal(t, "Motor", kids[0].Name)
	assert.Equal(t, "Main", kids[1].Name)

	rec, ok := tree.ByID(4)
	require.True(t, ok)
	assert.Equal(t, "Cycle", rec.Name)

	assert.Empty(t, tree.Quarantined())
}

func TestNewTreeQuarantinesOrphans(t *testing.T) {
	records := []Record{
		{ObjectID: 1, ParentID: 0, Kind: KindController, Name: "Ctrl"},
		{ObjectID: 5, ParentID: 99, Kind: KindTag, Name: "Orphan"},
	}

	tree := NewTree(records)
	require.Len(t, tree.Quarantined(), 1)
	assert.Equal(t, "Orphan", tree.Quarantined()[0].Name)

	// Still reachable by id even though unattached.
	_, ok := tree.ByID(5)
	assert.True(t, ok)
}

func TestNewTreeSkipsMalformedAndZeroID(t *testing.T) {
	records := []Record{
		{ObjectID: 1, ParentID: 0, Kind: KindController, Name: "Ctrl"},
		{Kind: KindMalformed, Offset: 40},
		{ObjectID: 0, Kind: KindTag, Name: "NoID"},
	}

	tree := NewTree(records)
	assert.Len(t, tree.Roots(), 1)
	assert.Empty(t, tree.Quarantined())
}

func TestNewTreeDuplicateKeepsFirst(t *testing.T) {
	records := []Record{
		{ObjectID: 1, ParentID: 0, Kind: KindController, Name: "First"},
		{ObjectID: 1, ParentID: 0, Kind: KindController, Name: "Second"},
	}

	tree := NewTree(records)
	require.Len(t, tree.Roots(), 1)
	assert.Equal(t, "First", tree.Roots()[0].Name)
}

func TestNewTreeRootOrder(t *testing.T) {
	records := []Record{
		{ObjectID: 9, ParentID: 0, Kind: KindUnknown, Seq: 2},
		{ObjectID: 3, ParentID: 0, Kind: KindUnknown, Seq: 1},
		{ObjectID: 7, ParentID: 0, Kind: KindUnknown, Seq: 1},
	}

	tree := NewTree(records)
	roots := tree.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, uint32(3), roots[0].ObjectID)
	assert.Equal(t, uint32(7), roots[1].ObjectID)
	assert.Equal(t, uint32(9), roots[2].ObjectID)
}
