package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}
	for _, v := range cases {
		buf := appendVarint(nil, v)
		got, n := decodeVarint(buf)
		require.NotZero(t, n)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestParseFieldsTruncatedTag(t *testing.T) {
	_, err := parseFields([]byte{0x80})
	assert.Error(t, err)
}

func TestParseFieldsSkipsZeroValues(t *testing.T) {
	var buf []byte
	buf = appendInt64(buf, 1, 0)
	buf = appendString(buf, 2, "")
	buf = appendBytes(buf, 3, nil)
	assert.Empty(t, buf)
}

func TestParseFieldsPreservesRepeats(t *testing.T) {
	var buf []byte
	buf = appendString(buf, 1, "a")
	buf = appendString(buf, 1, "b")
	fields, err := parseFields(buf)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "a", string(fields[0].bytes))
	assert.Equal(t, "b", string(fields[1].bytes))
}
