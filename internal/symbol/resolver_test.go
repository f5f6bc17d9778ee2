package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acdex/internal/recdb"
)

func TestResolve(t *testing.T) {
	records := []recdb.Record{
		{ObjectID: 1, Kind: recdb.KindController, Name: "Ctrl"},
		{ObjectID: 2, Kind: recdb.KindProgram, Name: "Main"},
		{ObjectID: 3, Kind: recdb.KindRoutine, Name: "Cycle"},
		{ObjectID: 4, Kind: recdb.KindTag, Name: "Motor"},
		{ObjectID: 5, Kind: recdb.KindModule, Name: "Rack1"},
	}

	table, err := Resolve(records)
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	name, ok := table.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, "Motor", name)

	id, ok := table.TagID("Motor")
	require.True(t, ok)
	assert.Equal(t, uint32(4), id)

	id, ok = table.ProgramID("Main")
	require.True(t, ok)
	assert.Equal(t, uint32(2), id)

	id, ok = table.RoutineID("Cycle")
	require.True(t, ok)
	assert.Equal(t, uint32(3), id)

	id, ok = table.ModuleID("Rack1")
	require.True(t, ok)
	assert.Equal(t, uint32(5), id)

	_, ok = table.Lookup(99)
	assert.False(t, ok)
	_, ok = table.TagID("Main") // program, not a tag
	assert.False(t, ok)
}

func TestResolveSkipsMalformedAndUnnamed(t *testing.T) {
	records := []recdb.Record{
		{ObjectID: 1, Kind: recdb.KindTag, Name: "Motor"},
		{ObjectID: 2, Kind: recdb.KindMalformed},
		{ObjectID: 3, Kind: recdb.KindRung}, // rungs are unnamed in Comps
	}

	table, err := Resolve(records)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestResolveConflict(t *testing.T) {
	records := []recdb.Record{
		{ObjectID: 7, Kind: recdb.KindTag, Name: "Motor"},
		{ObjectID: 7, Kind: recdb.KindTag, Name: "Pump"},
	}

	_, err := Resolve(records)
	require.Error(t, err)
	require.True(t, IsConflictError(err))

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint32(7), ce.ObjectID)
	assert.Equal(t, "Motor", ce.First)
	assert.Equal(t, "Pump", ce.Second)
}

func TestResolveEmpty(t *testing.T) {
	table, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}
