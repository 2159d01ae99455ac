package main

import (
	"testing"

	"github.com/npillmayer/otface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd := parseCommand("glyph:A:em  kern:AV bogus")
	require.Len(t, cmd, 3)
	assert.Equal(t, Op{code: GLYPH, arg: "A", format: "em"}, cmd[0])
	assert.Equal(t, Op{code: KERN, arg: "AV"}, cmd[1])
	assert.Equal(t, HELP, cmd[2].code, "unknown commands show help")
	cmd = parseCommand("TABLE:OS/2")
	require.Len(t, cmd, 1)
	assert.Equal(t, Op{code: TABLE, arg: "OS/2"}, cmd[0])
	cmd = parseCommand("quit glyph:A")
	assert.Equal(t, []Op{{code: QUIT}}, cmd, "nothing is parsed after quit")
	assert.Empty(t, parseCommand("   "))
}

func TestOpsTable(t *testing.T) {
	for code, op := range ops {
		require.NotNil(t, op.fn, "opcode %d", code)
		c, ok := lookupOp(op.name)
		assert.True(t, ok)
		assert.Equal(t, opcode(code), c)
	}
	assert.True(t, (&Intp{}).execute(parseCommand("quit")))
}

func TestParseRune(t *testing.T) {
	for arg, want := range map[string]rune{"A": 'A', "é": 'é', "U+00E9": 'é', "0x41": 'A', "u+4e00": '一'} {
		r, err := parseRune(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, want, r, arg)
	}
	_, err := parseRune("xyz")
	assert.Error(t, err)
}

func TestParseSkipTables(t *testing.T) {
	skip, err := parseSkipTables("name, OS/2")
	require.NoError(t, err)
	assert.Equal(t, otface.SkipName|otface.SkipOS2, skip)
	skip, err = parseSkipTables("")
	require.NoError(t, err)
	assert.Zero(t, skip)
	_, err = parseSkipTables("cmap")
	assert.Error(t, err)
}
