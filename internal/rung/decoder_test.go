package rung

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acdex/internal/recdb"
	"acdex/internal/symbol"
)

func table(t *testing.T, records ...recdb.Record) *symbol.Table {
	t.Helper()
	syms, err := symbol.Resolve(records)
	require.NoError(t, err)
	return syms
}

func TestDecodeResolvesPlaceholders(t *testing.T) {
	syms := table(t,
		recdb.Record{ObjectID: 0x0A, Kind: recdb.KindTag, Name: "Start_PB"},
		recdb.Record{ObjectID: 0xFF, Kind: recdb.KindTag, Name: "Motor_Run"},
	)

	r := Decode(3, []byte("XIC(@0000000A@)OTE(@000000FF@);"), syms)
	assert.Equal(t, uint32(3), r.Number)
	assert.Equal(t, "XIC(Start_PB)OTE(Motor_Run);", r.ResolvedText)
	assert.False(t, r.Partial)
	assert.Empty(t, r.Unresolved)
}

func TestDecodeKeepsUnresolvedVerbatim(t *testing.T) {
	syms := table(t, recdb.Record{ObjectID: 0x0A, Kind: recdb.KindTag, Name: "Start_PB"})

	r := Decode(0, []byte("XIC(@0000000A@)OTE(@DEADBEEF@);"), syms)
	assert.Equal(t, "XIC(Start_PB)OTE(@DEADBEEF@);", r.ResolvedText)
	assert.True(t, r.Partial)
	assert.Equal(t, []string{"@DEADBEEF@"}, r.Unresolved)
}

func TestDecodeLiteralOperandsPassThrough(t *testing.T) {
	syms := table(t)

	r := Decode(0, []byte("XIC(Local_Flag)TON(Delay,500,0);"), syms)
	assert.Equal(t, "XIC(Local_Flag)TON(Delay,500,0);", r.ResolvedText)
	assert.False(t, r.Partial)
}

func TestDecodeLowercaseHexPlaceholder(t *testing.T) {
	syms := table(t, recdb.Record{ObjectID: 0xAB, Kind: recdb.KindTag, Name: "Valve"})

	r := Decode(0, []byte("OTE(@000000ab@);"), syms)
	assert.Equal(t, "OTE(Valve);", r.ResolvedText)
	assert.False(t, r.Partial)
}

func TestDecodeIgnoresMalformedTokens(t *testing.T) {
	syms := table(t)

	// Too short and non-hex tokens are not placeholders.
	r := Decode(0, []byte("OTE(@1234@)XIC(@NOTAHEXX@);"), syms)
	assert.Equal(t, "OTE(@1234@)XIC(@NOTAHEXX@);", r.ResolvedText)
	assert.False(t, r.Partial)
}

func TestText(t *testing.T) {
	assert.Equal(t, "XIC(A)OTE(B);", Text([]byte("XIC(A)OTE(B);\x00\x00\x00")))
	assert.Equal(t, "XIC(A);", Text([]byte("  XIC(A);  ")))
	assert.Equal(t, "", Text([]byte{0x00, 0x41}))
}

func TestHasPlaceholder(t *testing.T) {
	assert.True(t, HasPlaceholder("OTE(@DEADBEEF@);"))
	assert.False(t, HasPlaceholder("OTE(Motor);"))
	assert.False(t, HasPlaceholder("OTE(@short@);"))
}

func TestMnemonics(t *testing.T) {
	got := Mnemonics("XIC(Start)TON(Delay,500,0)OTE(Motor);")
	assert.Equal(t, []string{"XIC", "TON", "OTE"}, got)

	assert.Empty(t, Mnemonics(""))
	assert.Equal(t, []string{"MAM"}, Mnemonics("MAM(Axis1,Pos,Speed);"))
}
