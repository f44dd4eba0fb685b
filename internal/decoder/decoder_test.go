package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

func hx(t *testing.T, s string) felt.Felt {
	t.Helper()
	f, err := felt.FromHex(s)
	require.NoError(t, err)
	return f
}

// S1 — first-sighting mint: keys = [Transfer, 0, 0xA, 1, 0] (u256 token_id=1 as low=1, high=0).
func TestDecode_NFT721_MintScenario(t *testing.T) {
	log := Log{
		FromAddress: "0xC",
		Keys: []felt.Felt{
			selTransfer,
			felt.Zero,
			hx(t, "0xA"),
			felt.FromUint64(1),
			felt.FromUint64(0),
		},
	}

	ev, compliance, err := Decode(classifier.NFT721, log)
	require.NoError(t, err)
	assert.Equal(t, Canonical, compliance)
	require.NotNil(t, ev.NFT721Transfer)
	assert.True(t, ev.NFT721Transfer.From.IsZero())
	assert.Equal(t, "1", ev.NFT721Transfer.TokenID.Decimal())
	assert.Equal(t, ActionMint, ClassifyAction(ev.NFT721Transfer.From, ev.NFT721Transfer.To))
}

func TestDecode_NFT721_NonCanonicalTransfer(t *testing.T) {
	log := Log{
		Keys: []felt.Felt{selTransfer},
		Data: []felt.Felt{hx(t, "0xA"), hx(t, "0xB"), felt.FromUint64(7), felt.FromUint64(0)},
	}

	ev, compliance, err := Decode(classifier.NFT721, log)
	require.NoError(t, err)
	assert.Equal(t, NonCanonical, compliance)
	assert.Equal(t, "7", ev.NFT721Transfer.TokenID.Decimal())
}

// S3 — ByteArray URI decode.
func TestDecode_NFT1155_URI(t *testing.T) {
	log := Log{
		Keys: []felt.Felt{selURI, hx(t, "0xA"), hx(t, "0xB")},
		Data: []felt.Felt{
			felt.FromUint64(4),
			hx(t, "0x68747470733a2f2f6170692e627269712e636f6e737472756374696f6e"),
			hx(t, "0x2f76312f7572692f7365742f"),
			hx(t, "0x737461726b6e65742d6d61696e6e65742f"),
			hx(t, "0x2e6a736f6e"),
			felt.FromUint64(42), // id low
			felt.FromUint64(0),  // id high
		},
	}

	ev, compliance, err := Decode(classifier.NFT1155, log)
	require.NoError(t, err)
	assert.Equal(t, Canonical, compliance)
	require.NotNil(t, ev.NFT1155URI)
	assert.Equal(t, "https://api.briq.construction/v1/uri/set/starknet-mainnet/.json", ev.NFT1155URI.Value)
	assert.Equal(t, "42", ev.NFT1155URI.ID.Decimal())
}

func TestDecode_NFT1155_TransferBatch(t *testing.T) {
	log := Log{
		Keys: []felt.Felt{selTransferBatch, hx(t, "0x01"), hx(t, "0xA"), hx(t, "0xB")},
		Data: []felt.Felt{
			felt.FromUint64(2),
			felt.FromUint64(1), felt.FromUint64(0),
			felt.FromUint64(2), felt.FromUint64(0),
			felt.FromUint64(2),
			felt.FromUint64(10), felt.FromUint64(0),
			felt.FromUint64(20), felt.FromUint64(0),
		},
	}

	ev, compliance, err := Decode(classifier.NFT1155, log)
	require.NoError(t, err)
	assert.Equal(t, Canonical, compliance)
	require.Len(t, ev.NFT1155TransferBatch.IDs, 2)
	assert.Equal(t, "1", ev.NFT1155TransferBatch.IDs[0].Decimal())
	assert.Equal(t, "20", ev.NFT1155TransferBatch.Values[1].Decimal())
}

func TestDecode_NFT1155_TransferBatch_LengthMismatch(t *testing.T) {
	log := Log{
		Keys: []felt.Felt{selTransferBatch, hx(t, "0x01"), hx(t, "0xA"), hx(t, "0xB")},
		Data: []felt.Felt{
			felt.FromUint64(1),
			felt.FromUint64(1), felt.FromUint64(0),
			felt.FromUint64(2),
			felt.FromUint64(10), felt.FromUint64(0),
			felt.FromUint64(20), felt.FromUint64(0),
		},
	}

	_, _, err := Decode(classifier.NFT1155, log)
	assert.ErrorIs(t, err, ErrBatchLengthMismatch)
}

func TestDecode_UnknownLayout(t *testing.T) {
	log := Log{Keys: []felt.Felt{selTransfer}}
	_, _, err := Decode(classifier.FUN, log)
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestDecodeBool(t *testing.T) {
	tru, err := decodeBool(felt.One)
	require.NoError(t, err)
	assert.True(t, tru)

	fls, err := decodeBool(felt.Zero)
	require.NoError(t, err)
	assert.False(t, fls)

	_, err = decodeBool(felt.FromUint64(2))
	assert.ErrorIs(t, err, ErrUnknownLayout)
}
