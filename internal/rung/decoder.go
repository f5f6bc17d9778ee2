// Package rung turns raw rung payload bytes into canonical instruction
// text. The payload already carries near-literal mnemonics and
// parenthesized operand lists (e.g. XIC(...)OTE(...);). Decoding is
// reference resolution: placeholder operands of the form @XXXXXXXX@ (a
// fixed-width hex object id) are substituted with the name registered in
// the symbol table. Operands that are already literal names pass through
// unchanged.
package rung

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"acdex/internal/symbol"
)

// Rung is one decoded unit of ladder logic. ResolvedText is only
// meaningful after symbol resolution; Partial marks a rung that still
// carries at least one unresolved placeholder.
type Rung struct {
	Number       uint32
	RawText      string
	ResolvedText string
	Comment      string
	Partial      bool
	Unresolved   []string
}

// placeholderPattern matches an encoded reference: @ + 8 hex digits + @.
var placeholderPattern = regexp.MustCompile(`@([0-9A-Fa-f]{8})@`)

// Decode extracts the instruction text from payload and resolves
// placeholder references against syms. Unresolved placeholders are
// preserved verbatim, never dropped, so the integrity scorer counts them
// as a loss instead of inventing a name.
func Decode(number uint32, payload []byte, syms *symbol.Table) Rung {
	raw := Text(payload)
	r := Rung{Number: number, RawText: raw}
	r.ResolvedText = placeholderPattern.ReplaceAllStringFunc(raw, func(token string) string {
		id, err := strconv.ParseUint(token[1:len(token)-1], 16, 32)
		if err == nil {
			if name, ok := syms.Lookup(uint32(id)); ok {
				return name
			}
		}
		r.Partial = true
		r.Unresolved = append(r.Unresolved, token)
		return token
	})
	return r
}

// HasPlaceholder reports whether text still carries an unresolved
// placeholder reference.
func HasPlaceholder(text string) bool {
	return placeholderPattern.MatchString(text)
}

// Text extracts the printable instruction text from a rung payload,
// trimming the trailing NUL padding some records carry.
func Text(payload []byte) string {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return strings.TrimSpace(string(payload))
}

// Mnemonics returns the instruction mnemonics appearing in resolved rung
// text, in order of appearance.
func Mnemonics(text string) []string {
	var out []string
	for _, m := range mnemonicPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// mnemonicPattern matches an instruction name directly before its operand
// list.
var mnemonicPattern = regexp.MustCompile(`([A-Z][A-Z0-9]{1,7})\(`)
