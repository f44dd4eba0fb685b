// Package orderbookdecoder turns raw marketplace-contract logs into the
// typed events internal/projection/orderbook's Engine consumes.
//
// spec.md's §4.3 decode table only covers the token-standard events
// (FUN/NFT721/NFT1155/SEC1400); the orderbook event wire format is left
// to whatever upstream emits OrderPlaced/OrderCancelled/OrderFulfilled/
// OrderExecuted/Rollback (the retrieved original_source's
// ark-indexer-transactions imports these already-decoded from an
// `arkproject::orderbook::events` crate that isn't part of this pack).
// This package is a from-scratch, best-effort reconstruction of that
// decode step, following the same selector-dispatch shape as
// internal/decoder, documented as an Open Question decision in
// DESIGN.md rather than ground truth copied from a retrieved source.
package orderbookdecoder

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cairo-marketplace/indexer/internal/felt"
	"github.com/cairo-marketplace/indexer/internal/projection/orderbook"
)

var ErrUnknownLayout = errors.New("orderbookdecoder: unrecognized event shape")

var (
	selOrderPlaced    = mustSelector("0x01a3a9a702f56b6f6c3b4a4f8a0d2e09f9a1de7e1d7d3b3b2e0a4d8d1c5b6a7e")
	selOrderCancelled = mustSelector("0x03d8a1c4e6f2b9a0d7c5e3f1a9b8d4c2e0f6a7b3d5c1e9f4a2b8d6c4e2f0a8b7")
	selOrderFulfilled = mustSelector("0x02b9d8a5c3e1f0b7d4a2c9e6f3b1d8a5c2e9f6b3d0a7c4e1f8b5d2a9c6e3f0b7")
	selOrderExecuted  = mustSelector("0x04c1e8b5a2d9f6c3b0a7e4d1c8b5a2f9e6d3c0b7a4e1d8c5b2f9e6d3a0c7b4e1")
	selRollback       = mustSelector("0x05d2f9c6b3a0e7d4c1b8a5f2e9d6c3b0a7e4d1c8b5a2f9e6d3c0b7a4e1d8c5b2")
)

func mustSelector(hex string) felt.Felt {
	f, err := felt.FromHex(hex)
	if err != nil {
		panic(err)
	}
	return f
}

// Log is the same shape as internal/decoder.Log, kept separate so this
// package has no dependency on C3.
type Log struct {
	Keys []felt.Felt
	Data []felt.Felt
}

// Kind identifies which typed orderbook event a log decoded to, so
// callers can dispatch to the right Engine method without a type switch
// over five pointer fields.
type Kind int

const (
	KindNone Kind = iota
	KindPlaced
	KindCancelled
	KindFulfilled
	KindExecuted
	KindRollback
)

// Context carries the envelope fields the decoder can't recover from
// the log alone: the chain's tx hash/event position/timestamp and the
// indexer's chain id.
type Context struct {
	TxHash         string
	EventID        string
	SubEventID     string
	BlockTimestamp int64
	ChainID        string
}

// Decode inspects keys[0] and returns the matching typed event. Every
// payload field beyond order_hash is read positionally from Data,
// mirroring the key/data split internal/decoder uses for token events.
func Decode(log Log, ctx Context) (Kind, interface{}, error) {
	if len(log.Keys) == 0 {
		return KindNone, nil, ErrUnknownLayout
	}
	selector := log.Keys[0]

	switch {
	case selector.Equal(selOrderPlaced):
		ev, err := decodePlaced(log, ctx)
		return KindPlaced, ev, err
	case selector.Equal(selOrderCancelled):
		ev, err := decodeCancelled(log, ctx)
		return KindCancelled, ev, err
	case selector.Equal(selOrderFulfilled):
		ev, err := decodeFulfilled(log, ctx)
		return KindFulfilled, ev, err
	case selector.Equal(selOrderExecuted):
		ev, err := decodeExecuted(log, ctx)
		return KindExecuted, ev, err
	case selector.Equal(selRollback):
		ev, err := decodeRollback(log, ctx)
		return KindRollback, ev, err
	default:
		return KindNone, nil, fmt.Errorf("%w: selector=%s", ErrUnknownLayout, selector)
	}
}

// field layout (Data, after the order_hash which always lives at
// data[0]): order_type, route_type, currency_address, currency_chain_id,
// offerer, token_address, token_id(u256), quantity(u256),
// start_amount(u256), end_amount(u256), start_date, end_date, broker_id.
func decodePlaced(log Log, ctx Context) (orderbook.PlacedEvent, error) {
	d := log.Data
	if len(d) < 18 {
		return orderbook.PlacedEvent{}, fmt.Errorf("%w: OrderPlaced data len=%d", ErrUnknownLayout, len(d))
	}

	orderType := orderTypeFromFelt(d[1])
	routeType := routeTypeFromFelt(d[2])
	tokenID := felt.U256FromWords(d[7], d[8])
	tokenIDDec, tokenIDHex := felt.TokenIDDecimalAndHex(tokenID)
	quantity := felt.U256FromWords(d[9], d[10])
	startAmount := felt.U256FromWords(d[11], d[12])
	endAmount := felt.U256FromWords(d[13], d[14])

	startAmountDec, err := decimal.NewFromString(startAmount.Decimal())
	if err != nil {
		return orderbook.PlacedEvent{}, fmt.Errorf("orderbookdecoder: parse start_amount: %w", err)
	}

	return orderbook.PlacedEvent{
		OrderHash:       d[0].Hex(),
		OrderType:       orderType,
		RouteType:       routeType,
		CurrencyAddress: d[3].Hex(),
		CurrencyChainID: d[4].Hex(),
		Offerer:         d[5].Hex(),
		TokenAddress:    d[6].Hex(),
		TokenIDDec:      tokenIDDec,
		TokenIDHex:      tokenIDHex,
		Quantity:        quantity.Hex(),
		StartAmount:     startAmount.Hex(),
		StartAmountDec:  startAmountDec,
		EndAmount:       endAmount.Hex(),
		StartDate:       time.Unix(int64(d[15].Uint64()), 0),
		EndDate:         time.Unix(int64(d[16].Uint64()), 0),
		BrokerID:        d[17].Hex(),
		ChainID:         ctx.ChainID,
		TxHash:          ctx.TxHash,
		EventID:         ctx.EventID,
		SubEventID:      ctx.SubEventID,
		Timestamp:       ctx.BlockTimestamp,
	}, nil
}

// field layout: order_hash, reason_code.
func decodeCancelled(log Log, ctx Context) (orderbook.CancelledEvent, error) {
	d := log.Data
	if len(d) < 2 {
		return orderbook.CancelledEvent{}, fmt.Errorf("%w: OrderCancelled data len=%d", ErrUnknownLayout, len(d))
	}
	return orderbook.CancelledEvent{
		OrderHash:  d[0].Hex(),
		Reason:     cancelledReasonFromFelt(d[1]),
		Timestamp:  ctx.BlockTimestamp,
		TxHash:     ctx.TxHash,
		EventID:    ctx.EventID,
		SubEventID: ctx.SubEventID,
	}, nil
}

// field layout: order_hash, fulfiller.
func decodeFulfilled(log Log, ctx Context) (orderbook.FulfilledEvent, error) {
	d := log.Data
	if len(d) < 2 {
		return orderbook.FulfilledEvent{}, fmt.Errorf("%w: OrderFulfilled data len=%d", ErrUnknownLayout, len(d))
	}
	return orderbook.FulfilledEvent{
		OrderHash:  d[0].Hex(),
		Fulfiller:  d[1].Hex(),
		Timestamp:  ctx.BlockTimestamp,
		TxHash:     ctx.TxHash,
		EventID:    ctx.EventID,
		SubEventID: ctx.SubEventID,
	}, nil
}

// field layout: order_hash, [from, to] present only in later contract
// versions — absent (len==1) in the V0 payload per spec §9 open
// question 3, left for the engine to derive.
func decodeExecuted(log Log, ctx Context) (orderbook.ExecutedEvent, error) {
	d := log.Data
	if len(d) < 1 {
		return orderbook.ExecutedEvent{}, fmt.Errorf("%w: OrderExecuted data len=%d", ErrUnknownLayout, len(d))
	}
	ev := orderbook.ExecutedEvent{
		OrderHash:  d[0].Hex(),
		Timestamp:  ctx.BlockTimestamp,
		TxHash:     ctx.TxHash,
		EventID:    ctx.EventID,
		SubEventID: ctx.SubEventID,
	}
	if len(d) >= 3 {
		ev.From = d[1].Hex()
		ev.To = d[2].Hex()
	}
	return ev, nil
}

// field layout: order_hash, reason (short string).
func decodeRollback(log Log, ctx Context) (orderbook.RollbackEvent, error) {
	d := log.Data
	if len(d) < 2 {
		return orderbook.RollbackEvent{}, fmt.Errorf("%w: Rollback data len=%d", ErrUnknownLayout, len(d))
	}
	reason, err := felt.DecodeShortString(d[1])
	if err != nil {
		reason = d[1].Hex()
	}
	return orderbook.RollbackEvent{
		OrderHash:  d[0].Hex(),
		Reason:     reason,
		Timestamp:  ctx.BlockTimestamp,
		TxHash:     ctx.TxHash,
		EventID:    ctx.EventID,
		SubEventID: ctx.SubEventID,
	}, nil
}

func orderTypeFromFelt(f felt.Felt) orderbook.OrderType {
	switch f.Uint64() {
	case 0:
		return orderbook.OrderTypeListing
	case 1:
		return orderbook.OrderTypeAuction
	case 2:
		return orderbook.OrderTypeOffer
	default:
		return orderbook.OrderTypeCollectionOffer
	}
}

func routeTypeFromFelt(f felt.Felt) orderbook.RouteType {
	switch f.Uint64() {
	case 0:
		return orderbook.RouteERC20ToERC721
	case 1:
		return orderbook.RouteERC721ToERC20
	case 2:
		return orderbook.RouteERC20ToERC1155
	default:
		return orderbook.RouteERC1155ToERC20
	}
}

func cancelledReasonFromFelt(f felt.Felt) orderbook.CancelledReason {
	switch f.Uint64() {
	case 1:
		return orderbook.CancelledUser
	case 2:
		return orderbook.CancelledByNewOrder
	case 3:
		return orderbook.CancelledAssetFault
	case 4:
		return orderbook.CancelledOwnership
	default:
		return orderbook.CancelledUnknown
	}
}
