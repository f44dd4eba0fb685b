package felt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeByteArray_Empty(t *testing.T) {
	ba := EncodeByteArray("")
	assert.Empty(t, ba.Data)
	assert.True(t, ba.PendingWord.IsZero())
	assert.Equal(t, 0, ba.PendingWordLen)
}

func TestEncodeByteArray_PendingOnly(t *testing.T) {
	ba := EncodeByteArray("ABCD")
	assert.Empty(t, ba.Data)
	assert.Equal(t, 4, ba.PendingWordLen)

	want, err := FromHex("0x41424344")
	require.NoError(t, err)
	assert.True(t, ba.PendingWord.Equal(want))
}

func TestEncodeByteArray_MaxPendingLen(t *testing.T) {
	ba := EncodeByteArray("ABCDEFGHIJKLMNOPQRSTUVWXYZ1234")
	assert.Empty(t, ba.Data)
	assert.Equal(t, 30, ba.PendingWordLen)
}

func TestEncodeByteArray_DataOnly(t *testing.T) {
	ba := EncodeByteArray("ABCDEFGHIJKLMNOPQRSTUVWXYZ12345")
	assert.Len(t, ba.Data, 1)
	assert.Equal(t, 0, ba.PendingWordLen)
	assert.True(t, ba.PendingWord.IsZero())
}

func TestEncodeByteArray_DataOnlyMultiple(t *testing.T) {
	s := "ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCDEFGHIJKLMNOPQRSTUVWXYZ12345"
	ba := EncodeByteArray(s)
	assert.Len(t, ba.Data, 2)
	assert.Equal(t, 0, ba.PendingWordLen)
}

func TestEncodeByteArray_DataAndPending(t *testing.T) {
	s := "ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCD"
	ba := EncodeByteArray(s)
	assert.Len(t, ba.Data, 2)
	assert.Equal(t, 4, ba.PendingWordLen)
}

func TestByteArrayRoundtrip_MultiByteCodepointAcrossWordBoundary(t *testing.T) {
	// The crab + star emoji encode to 8 UTF-8 bytes; after 20 ASCII bytes
	// the second crab occupies bytes 28-31, straddling the end of the
	// first 31-byte word (bytes 0-30).
	s := "🦀🌟abcdefghijklmnopqrst🦀xyz"
	ba := EncodeByteArray(s)
	got, err := ba.Decode()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestByteArray_InvalidUtf8(t *testing.T) {
	ba := ByteArray{
		PendingWord:   FromBytesBE([]byte{0xff, 0xff, 0xff, 0xff}),
		PendingWordLen: 4,
	}
	_, err := ba.Decode()
	assert.ErrorIs(t, err, ErrUtf8)
}

// Property P1: decode(encode(s)) == s and encode(decode(encode(s))) == encode(s).
func TestProperty_ByteArrayRoundtrip(t *testing.T) {
	cases := []string{
		"",
		"h",
		"ABCD",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ1234",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ12345",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCDEFGHIJKLMNOPQRSTUVWXYZ12345",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCD",
		"https://api.briq.construction/v1/uri/set/starknet-mainnet/.json",
		"🦀🌟",
	}

	for _, s := range cases {
		ba := EncodeByteArray(s)
		decoded, err := ba.Decode()
		require.NoError(t, err)
		assert.Equal(t, s, decoded)

		reencoded := EncodeByteArray(decoded)
		assert.Equal(t, ba, reencoded)
	}
}

func TestDecodeShortString(t *testing.T) {
	f, err := FromHex("0x68")
	require.NoError(t, err)
	s, err := DecodeShortString(f)
	require.NoError(t, err)
	assert.Equal(t, "h", s)
}

func TestDecodeLongString_Empty(t *testing.T) {
	_, err := DecodeLongString(nil)
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestDecodeLongString_SingleElement(t *testing.T) {
	f, err := FromHex("0x68")
	require.NoError(t, err)
	s, err := DecodeLongString([]Felt{f})
	require.NoError(t, err)
	assert.Equal(t, "h", s)
}

func mustHex(t *testing.T, s string) Felt {
	t.Helper()
	f, err := FromHex(s)
	require.NoError(t, err)
	return f
}

func TestDecodeLongString_ShortStringArray(t *testing.T) {
	elements := []Felt{
		mustHex(t, "0x4"),
		mustHex(t, "0x68747470733a2f2f6170692e627269712e636f6e737472756374696f6e"),
		mustHex(t, "0x2f76312f7572692f7365742f"),
		mustHex(t, "0x737461726b6e65742d6d61696e6e65742f"),
		mustHex(t, "0x2e6a736f6e"),
	}

	got, err := DecodeLongString(elements)
	require.NoError(t, err)
	assert.Equal(t, "https://api.briq.construction/v1/uri/set/starknet-mainnet/.json", got)
}

func TestDecodeLongString_PackedByteArray(t *testing.T) {
	// A packed ByteArray with one full word ("ABCDEFGHIJKLMNOPQRSTUVWXYZ12345")
	// and a 4-byte pending word ("ABCD"): elements = [1, fullword, pending, 4].
	elements := []Felt{
		FromUint64(1),
		mustHex(t, "0x004142434445464748494a4b4c4d4e4f505152535455565758595a3132333435"),
		mustHex(t, "0x41424344"),
		FromUint64(4),
	}

	got, err := DecodeLongString(elements)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ12345ABCD", got)
}

func TestDecodeLongString_FormatMismatch(t *testing.T) {
	elements := []Felt{
		FromUint64(5),
		FromUint64(1),
		FromUint64(2),
	}
	_, err := DecodeLongString(elements)
	assert.ErrorIs(t, err, ErrByteArrayFormat)
}
