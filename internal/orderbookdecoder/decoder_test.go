package orderbookdecoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairo-marketplace/indexer/internal/felt"
	"github.com/cairo-marketplace/indexer/internal/projection/orderbook"
)

func hexFelt(t *testing.T, s string) felt.Felt {
	t.Helper()
	f, err := felt.FromHex(s)
	require.NoError(t, err)
	return f
}

func TestDecode_Placed(t *testing.T) {
	orderHash := hexFelt(t, "0xabc")
	data := []felt.Felt{
		orderHash,               // order_hash
		felt.FromUint64(2),      // order_type = Offer
		felt.FromUint64(0),      // route_type = ERC20_TO_ERC721
		hexFelt(t, "0xc0ffee"),  // currency_address
		felt.FromUint64(1),      // currency_chain_id
		hexFelt(t, "0xa11ce"),   // offerer
		hexFelt(t, "0xb0b"),     // token_address
		felt.FromUint64(7),      // token_id low
		felt.Zero,               // token_id high
		felt.FromUint64(1),      // quantity low
		felt.Zero,               // quantity high
		felt.FromUint64(100),    // start_amount low
		felt.Zero,               // start_amount high
		felt.FromUint64(100),    // end_amount low
		felt.Zero,               // end_amount high
		felt.FromUint64(1000),   // start_date
		felt.FromUint64(2000),   // end_date
		felt.FromUint64(9),      // broker_id
	}
	log := Log{Keys: []felt.Felt{selOrderPlaced}, Data: data}

	kind, ev, err := Decode(log, Context{TxHash: "0xtx", EventID: "0xtx_0", ChainID: "SN_MAIN", BlockTimestamp: 1000})
	require.NoError(t, err)
	assert.Equal(t, KindPlaced, kind)

	placed := ev.(orderbook.PlacedEvent)
	assert.Equal(t, orderbook.OrderTypeOffer, placed.OrderType)
	assert.Equal(t, orderbook.RouteERC20ToERC721, placed.RouteType)
	assert.Equal(t, "7", placed.TokenIDDec)
	assert.Equal(t, "100", placed.StartAmountDec.String())
	assert.Equal(t, "SN_MAIN", placed.ChainID)
}

func TestDecode_Cancelled(t *testing.T) {
	data := []felt.Felt{hexFelt(t, "0xabc"), felt.FromUint64(2)}
	log := Log{Keys: []felt.Felt{selOrderCancelled}, Data: data}

	kind, ev, err := Decode(log, Context{})
	require.NoError(t, err)
	assert.Equal(t, KindCancelled, kind)
	assert.Equal(t, orderbook.CancelledByNewOrder, ev.(orderbook.CancelledEvent).Reason)
}

func TestDecode_ExecutedWithoutFromTo(t *testing.T) {
	data := []felt.Felt{hexFelt(t, "0xabc")}
	log := Log{Keys: []felt.Felt{selOrderExecuted}, Data: data}

	kind, ev, err := Decode(log, Context{})
	require.NoError(t, err)
	assert.Equal(t, KindExecuted, kind)
	executed := ev.(orderbook.ExecutedEvent)
	assert.Empty(t, executed.From)
	assert.Empty(t, executed.To)
}

func TestDecode_UnknownSelector(t *testing.T) {
	log := Log{Keys: []felt.Felt{felt.FromUint64(999)}, Data: nil}
	_, _, err := Decode(log, Context{})
	assert.ErrorIs(t, err, ErrUnknownLayout)
}
