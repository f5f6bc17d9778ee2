package recdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acdex/internal/testutil"
)

func TestDecodeControllerPayload(t *testing.T) {
	info, err := DecodeControllerPayload(testutil.ControllerPayload("1756-L83E", 35, 11))
	require.NoError(t, err)
	assert.Equal(t, "1756-L83E", info.ProcessorType)
	assert.Equal(t, 35, info.MajorRev)
	assert.Equal(t, 11, info.MinorRev)
}

func TestDecodeProgramPayload(t *testing.T) {
	info, err := DecodeProgramPayload(testutil.ProgramPayload("Cycle", true))
	require.NoError(t, err)
	assert.Equal(t, "Cycle", info.MainRoutine)
	assert.True(t, info.Safety)
}

func TestDecodeRoutinePayload(t *testing.T) {
	tests := []struct {
		code byte
		want string
	}{
		{0, "RLL"},
		{1, "ST"},
		{2, "FBD"},
		{3, "SFC"},
		{200, "RLL"}, // out of table falls back to the first entry
	}
	for _, tt := range tests {
		info, err := DecodeRoutinePayload(testutil.RoutinePayload(tt.code))
		require.NoError(t, err)
		assert.Equal(t, tt.want, info.Type)
	}
}

func TestDecodeTagPayload(t *testing.T) {
	info, err := DecodeTagPayload(testutil.TagPayload("DINT", 3, 1, true, true))
	require.NoError(t, err)
	assert.Equal(t, "DINT", info.DataType)
	assert.Equal(t, "Hex", info.Radix)
	assert.Equal(t, "Read Only", info.ExternalAccess)
	assert.True(t, info.Constant)
	assert.True(t, info.Safety)
}

func TestDecodeDataTypePayload(t *testing.T) {
	payload := testutil.DataTypePayload(
		testutil.DataTypeMember{Name: "Speed", DataType: "REAL", Dimension: 0, Radix: 4},
		testutil.DataTypeMember{Name: "Counts", DataType: "DINT", Dimension: 8, Hidden: true},
	)
	info, err := DecodeDataTypePayload(payload)
	require.NoError(t, err)
	require.Len(t, info.Members, 2)
	assert.Equal(t, "Speed", info.Members[0].Name)
	assert.Equal(t, "Float", info.Members[0].Radix)
	assert.Equal(t, 8, info.Members[1].Dimension)
	assert.True(t, info.Members[1].Hidden)
}

func TestDecodeModulePayload(t *testing.T) {
	info, err := DecodeModulePayload(testutil.ModulePayload("1756-IB16", 1, 7, 1289, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "1756-IB16", info.CatalogNumber)
	assert.Equal(t, 1, info.Vendor)
	assert.Equal(t, 7, info.ProductType)
	assert.Equal(t, 1289, info.ProductCode)
	assert.Equal(t, 3, info.Major)
	assert.Equal(t, 1, info.Minor)
}

func TestDecodeAddOnInstructionPayload(t *testing.T) {
	payload := testutil.AOIPayload("2.3",
		testutil.AOIParameter{Name: "EnableIn", DataType: "BOOL", Usage: 0, Required: true},
		testutil.AOIParameter{Name: "Result", DataType: "REAL", Usage: 1},
		testutil.AOIParameter{Name: "Buffer", DataType: "DINT", Usage: 2},
	)
	info, err := DecodeAddOnInstructionPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "2.3", info.Revision)
	require.Len(t, info.Parameters, 3)
	assert.Equal(t, "Input", info.Parameters[0].Usage)
	assert.True(t, info.Parameters[0].Required)
	assert.Equal(t, "Output", info.Parameters[1].Usage)
	assert.Equal(t, "InOut", info.Parameters[2].Usage)
}

func TestDecodeTaskPayload(t *testing.T) {
	info, err := DecodeTaskPayload(testutil.TaskPayload(1, 10, 50, "Main", "Aux"))
	require.NoError(t, err)
	assert.Equal(t, "PERIODIC", info.Type)
	assert.Equal(t, 10, info.Priority)
	assert.Equal(t, 50, info.RateMs)
	assert.Equal(t, []string{"Main", "Aux"}, info.ScheduledPrograms)
}

func TestDecodeTruncatedPayloads(t *testing.T) {
	_, err := DecodeControllerPayload([]byte{0x05, 'a'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")

	_, err = DecodeTagPayload(testutil.PascalString("BOOL"))
	require.Error(t, err)

	_, err = DecodeTaskPayload(nil)
	require.Error(t, err)
}
