package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acdex/internal/container"
	"acdex/internal/recdb"
	"acdex/internal/symbol"
	"acdex/internal/testutil"
)

func decodeFixture(t *testing.T, name string, raw []byte) *recdb.Result {
	t.Helper()
	res, err := recdb.Decode(container.VirtualFile{Name: name, Bytes: raw}, 0)
	require.NoError(t, err)
	return res
}

func TestAssembleComponents(t *testing.T) {
	var raw []byte
	for _, rec := range [][]byte{
		testutil.PascalRecord(1, 0, recdb.TypeController, 0, "Ctrl",
			testutil.ControllerPayload("L83E", 35, 11)),
		testutil.PascalRecord(2, 1, recdb.TypeDataType, 0, "UDT_Motor",
			testutil.DataTypePayload(testutil.DataTypeMember{Name: "Run", DataType: "BOOL"})),
		testutil.PascalRecord(3, 1, recdb.TypeModule, 1, "Rack1_Slot2",
			testutil.ModulePayload("1756-IB16", 1, 7, 1289, 3, 1)),
		testutil.PascalRecord(4, 1, recdb.TypeAddOnInstruction, 2, "PumpCtl",
			testutil.AOIPayload("2.3", testutil.AOIParameter{Name: "EnableIn", DataType: "BOOL", Required: true})),
	} {
		raw = append(raw, rec...)
	}
	comps := decodeFixture(t, "Comps", raw)

	syms, err := symbol.Resolve(comps.Records)
	require.NoError(t, err)

	asm := assemble(comps, nil, nil, syms)
	require.Empty(t, asm.Warnings)
	ctrl := asm.Project.Controller

	dt, ok := ctrl.DataTypes.ByName("UDT_Motor")
	require.True(t, ok)
	require.Len(t, dt.Members, 1)
	assert.Equal(t, "BOOL", dt.Members[0].DataType)

	mod, ok := ctrl.Modules.ByName("Rack1_Slot2")
	require.True(t, ok)
	assert.Equal(t, "1756-IB16", mod.CatalogNumber)

	aoi, ok := ctrl.AddOnInstructions.ByName("PumpCtl")
	require.True(t, ok)
	assert.Equal(t, "2.3", aoi.Revision)
	require.Len(t, aoi.Parameters, 1)
	assert.True(t, aoi.Parameters[0].Required)
}

func TestAssembleNoController(t *testing.T) {
	comps := decodeFixture(t, "Comps",
		testutil.PascalRecord(4, 9, recdb.TypeTag, 0, "Orphan",
			testutil.TagPayload("BOOL", 0, 0, false, false)))
	syms, err := symbol.Resolve(comps.Records)
	require.NoError(t, err)

	asm := assemble(comps, nil, nil, syms)
	require.NotEmpty(t, asm.Warnings)
	assert.Equal(t, "Controller", asm.Warnings[0].Component)
	assert.Equal(t, "", asm.Project.Controller.Name)
}

func TestAssembleRegionRungUnknownTarget(t *testing.T) {
	comps := decodeFixture(t, "Comps",
		testutil.PascalRecord(1, 0, recdb.TypeController, 0, "Ctrl",
			testutil.ControllerPayload("L83E", 35, 0)))
	sbRegion := decodeFixture(t, "SbRegion",
		testutil.PascalRecord(1, 0, recdb.TypeRung, 0, `Ghost\Cycle`, []byte("OTE(A);")))
	syms, err := symbol.Resolve(comps.Records)
	require.NoError(t, err)

	asm := assemble(comps, sbRegion, nil, syms)
	require.NotEmpty(t, asm.Warnings)
	assert.Contains(t, asm.Warnings[0].Message, "Ghost")
}

func TestAssembleCommentBeyondRungRange(t *testing.T) {
	var raw []byte
	for _, rec := range [][]byte{
		testutil.PascalRecord(1, 0, recdb.TypeController, 0, "Ctrl",
			testutil.ControllerPayload("L83E", 35, 0)),
		testutil.PascalRecord(2, 1, recdb.TypeProgram, 0, "Main",
			testutil.ProgramPayload("Cycle", false)),
		testutil.PascalRecord(3, 2, recdb.TypeRoutine, 0, "Cycle",
			testutil.RoutinePayload(0)),
	} {
		raw = append(raw, rec...)
	}
	comps := decodeFixture(t, "Comps", raw)
	comments := decodeFixture(t, "Comments",
		testutil.UTF16Record(1, 0, recdb.TypeComment, 0, "lost note",
			testutil.CommentPayload(5, "Main", "Cycle")))
	syms, err := symbol.Resolve(comps.Records)
	require.NoError(t, err)

	asm := assemble(comps, nil, comments, syms)
	assert.Equal(t, 0, asm.CommentCount)
	require.NotEmpty(t, asm.Warnings)
	assert.Contains(t, asm.Warnings[0].Message, "beyond routine")
}

func TestAssembleQuarantinedCount(t *testing.T) {
	var raw []byte
	for _, rec := range [][]byte{
		testutil.PascalRecord(1, 0, recdb.TypeController, 0, "Ctrl",
			testutil.ControllerPayload("L83E", 35, 0)),
		testutil.PascalRecord(9, 77, recdb.TypeTag, 0, "Adrift",
			testutil.TagPayload("BOOL", 0, 0, false, false)),
	} {
		raw = append(raw, rec...)
	}
	comps := decodeFixture(t, "Comps", raw)
	syms, err := symbol.Resolve(comps.Records)
	require.NoError(t, err)

	asm := assemble(comps, nil, nil, syms)
	assert.Equal(t, 1, asm.QuarantinedCount)
}
