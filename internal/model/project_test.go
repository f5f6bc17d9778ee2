package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionOrderAndLookup(t *testing.T) {
	var c Collection[*Tag]
	c.Add(&Tag{Name: "Zulu"})
	c.Add(&Tag{Name: "Alpha"})
	c.Add(&Tag{Name: "Mike"})

	require.Equal(t, 3, c.Len())

	// Insertion order, not sorted.
	all := c.All()
	assert.Equal(t, "Zulu", all[0].Name)
	assert.Equal(t, "Alpha", all[1].Name)
	assert.Equal(t, "Mike", all[2].Name)

	tag, ok := c.ByName("Alpha")
	require.True(t, ok)
	assert.Equal(t, "Alpha", tag.Name)

	_, ok = c.ByName("Missing")
	assert.False(t, ok)
}

func TestCollectionDuplicateNameIndexesLatest(t *testing.T) {
	var c Collection[*Tag]
	c.Add(&Tag{Name: "Motor", DataType: "BOOL"})
	c.Add(&Tag{Name: "Motor", DataType: "DINT"})

	assert.Equal(t, 2, c.Len())
	tag, ok := c.ByName("Motor")
	require.True(t, ok)
	assert.Equal(t, "DINT", tag.DataType)
}

func TestCollectionZeroValue(t *testing.T) {
	var c Collection[*Program]
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
	_, ok := c.ByName("anything")
	assert.False(t, ok)
}

func TestNewProject(t *testing.T) {
	p := NewProject("Ctrl")
	require.NotNil(t, p.Controller)
	assert.Equal(t, "Ctrl", p.Controller.Name)
	assert.Equal(t, 0, p.Controller.Programs.Len())
}
