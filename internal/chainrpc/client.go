// Package chainrpc is the JSON-RPC client for the chain's `call`,
// `latest_block_number`, and `pending_block` methods (spec component
// external interface, §6), built on creachadair/jrpc2.
package chainrpc

import (
	"context"
	"errors"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/cairo-marketplace/indexer/internal/felt"
)

// Kind classifies a call failure so C2/C3 can drive classifier fallback
// without string-matching at every call site.
type Kind int

const (
	KindNone Kind = iota
	KindEntrypointNotFound
	KindInputTooLong
	KindInputTooShort
	KindContractError
	KindProvider
)

// CallError wraps a chain `call` failure with its classified Kind and,
// for ContractError, the raw message so callers can inspect substrings.
type CallError struct {
	Kind    Kind
	Message string
}

func (e *CallError) Error() string {
	return "chainrpc: " + e.Message
}

// ErrNoEntrypoint is returned when neither spelling of a probed
// entrypoint (camelCase nor snake_case) exists on the contract.
var ErrNoEntrypoint = errors.New("chainrpc: no matching entrypoint")

// PendingBlock is the subset of the pending block response the adapter
// runner and projection engine need.
type PendingBlock struct {
	Timestamp int64    `json:"timestamp"`
	TxHashes  []string `json:"transaction_hashes"`
}

// Client talks to a single chain RPC endpoint over JSON-RPC/HTTP.
type Client struct {
	inner *jrpc2.Client
}

// New dials the given JSON-RPC endpoint. The connection is lazy: no
// request is sent until the first call.
func New(endpoint string) (*Client, error) {
	ch := jhttp.NewChannel(endpoint, nil)
	return &Client{inner: jrpc2.NewClient(ch, nil)}, nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}

type callRequest struct {
	ContractAddress string   `json:"contract_address"`
	EntryPointSel   string   `json:"entry_point_selector"`
	Calldata        []string `json:"calldata"`
}

type blockID struct {
	BlockNumber *uint64 `json:"block_number,omitempty"`
	BlockTag    string  `json:"block_tag,omitempty"`
}

// Call invokes a contract's view entrypoint at the given block (use
// BlockPending or BlockLatest). The returned Felts are in wire order.
func (c *Client) Call(ctx context.Context, address string, selector string, calldata []felt.Felt, block BlockRef) ([]felt.Felt, error) {
	hexCalldata := make([]string, len(calldata))
	for i, f := range calldata {
		hexCalldata[i] = f.Hex()
	}

	var raw []string
	err := c.inner.CallResult(ctx, "starknet_call", []interface{}{
		callRequest{ContractAddress: address, EntryPointSel: selector, Calldata: hexCalldata},
		block.wire(),
	}, &raw)
	if err != nil {
		return nil, classifyCallError(err)
	}

	out := make([]felt.Felt, len(raw))
	for i, s := range raw {
		f, perr := felt.FromHex(s)
		if perr != nil {
			return nil, &CallError{Kind: KindProvider, Message: perr.Error()}
		}
		out[i] = f
	}
	return out, nil
}

// LatestBlockNumber returns the chain tip.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.inner.CallResult(ctx, "starknet_blockNumber", nil, &n); err != nil {
		return 0, &CallError{Kind: KindProvider, Message: err.Error()}
	}
	return n, nil
}

// PendingBlockInfo returns the pending block's timestamp and tx hashes.
func (c *Client) PendingBlockInfo(ctx context.Context) (PendingBlock, error) {
	var pb PendingBlock
	if err := c.inner.CallResult(ctx, "starknet_getBlockWithTxHashes", []interface{}{
		blockID{BlockTag: "pending"},
	}, &pb); err != nil {
		return PendingBlock{}, &CallError{Kind: KindProvider, Message: err.Error()}
	}
	return pb, nil
}

// PendingBlockTimestamp is the convenience projection of PendingBlockInfo
// the adapter runner polls every tick (spec §4.8 step 1).
func (c *Client) PendingBlockTimestamp(ctx context.Context) (int64, error) {
	pb, err := c.PendingBlockInfo(ctx)
	if err != nil {
		return 0, err
	}
	return pb.Timestamp, nil
}

// BlockTimestamp returns a mined block's timestamp by number, used to
// stamp events fetched from a finalized range (as opposed to the
// pending-block re-index path, which uses PendingBlockTimestamp).
func (c *Client) BlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error) {
	var pb PendingBlock
	if err := c.inner.CallResult(ctx, "starknet_getBlockWithTxHashes", []interface{}{
		blockID{BlockNumber: &blockNumber},
	}, &pb); err != nil {
		return 0, &CallError{Kind: KindProvider, Message: err.Error()}
	}
	return pb.Timestamp, nil
}

// BlockRef selects the block a `call` is evaluated against.
type BlockRef struct {
	number *uint64
	tag    string
}

var BlockPending = BlockRef{tag: "pending"}
var BlockLatest = BlockRef{tag: "latest"}

func BlockNumber(n uint64) BlockRef {
	return BlockRef{number: &n}
}

func (b BlockRef) wire() blockID {
	return blockID{BlockNumber: b.number, BlockTag: b.tag}
}

// classifyCallError maps a jrpc2 error into the Kind taxonomy the
// classifier (C2) and decoder rely on, per spec §4.2/§7.
func classifyCallError(err error) error {
	var jerr *jrpc2.Error
	if !errors.As(err, &jerr) {
		return &CallError{Kind: KindProvider, Message: err.Error()}
	}

	msg := jerr.Message()
	switch {
	case strings.Contains(msg, "Entry point") && strings.Contains(msg, "not found"):
		return &CallError{Kind: KindEntrypointNotFound, Message: msg}
	case strings.Contains(msg, "too long") || strings.Contains(msg, "Input too long"):
		return &CallError{Kind: KindInputTooLong, Message: msg}
	case strings.Contains(msg, "too short") || strings.Contains(msg, "Input too short"):
		return &CallError{Kind: KindInputTooShort, Message: msg}
	default:
		return &CallError{Kind: KindContractError, Message: msg}
	}
}
