package chainrpc

import (
	"context"

	"github.com/cairo-marketplace/indexer/internal/felt"
)

// RawEvent is one chain event log as returned by starknet_getEvents,
// the raw JSON-RPC block fetcher spec §1 names as an external
// collaborator — its shape isn't part of the spec's core interface, so
// this lives alongside Client rather than in internal/decoder.
type RawEvent struct {
	FromAddress     string   `json:"from_address"`
	Keys            []string `json:"keys"`
	Data            []string `json:"data"`
	BlockNumber     uint64   `json:"block_number"`
	BlockTimestamp  int64    `json:"-"` // not set by GetEvents; callers look it up via Client.BlockTimestamp
	TransactionHash string   `json:"transaction_hash"`
}

type getEventsResult struct {
	Events          []RawEvent `json:"events"`
	ContinuationToken string   `json:"continuation_token"`
}

// GetEvents pages every event in [fromBlock, toBlock] inclusive,
// following starknet_getEvents' continuation-token pagination.
func (c *Client) GetEvents(ctx context.Context, fromBlock, toBlock uint64) ([]RawEvent, error) {
	var all []RawEvent
	token := ""
	for {
		filter := map[string]interface{}{
			"from_block":      blockID{BlockNumber: &fromBlock},
			"to_block":        blockID{BlockNumber: &toBlock},
			"chunk_size":      1000,
		}
		if token != "" {
			filter["continuation_token"] = token
		}

		var res getEventsResult
		if err := c.inner.CallResult(ctx, "starknet_getEvents", []interface{}{filter}, &res); err != nil {
			return nil, &CallError{Kind: KindProvider, Message: err.Error()}
		}
		all = append(all, res.Events...)

		if res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}
	return all, nil
}

// Keys_ and Data_ decode a RawEvent's hex keys/data into Felts for internal/decoder.
func (e RawEvent) Keys_() ([]felt.Felt, error)  { return decodeFeltHexes(e.Keys) }
func (e RawEvent) Data_() ([]felt.Felt, error)  { return decodeFeltHexes(e.Data) }

func decodeFeltHexes(hexes []string) ([]felt.Felt, error) {
	out := make([]felt.Felt, len(hexes))
	for i, h := range hexes {
		f, err := felt.FromHex(h)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
