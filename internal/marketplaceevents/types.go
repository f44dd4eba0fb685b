// Package marketplaceevents is the gRPC streaming surface for decoded
// marketplace events (spec §4, component mapping), mirroring the
// teacher's contract-events-processor/go/server GetContractEvents
// shape. Per SPEC_FULL §4 it is deliberately proto-free: the wire
// structs below are plain Go, carried over grpc with a JSON codec
// instead of a protoc-generated one, since nothing in this pipeline
// needs cross-language wire compatibility.
package marketplaceevents

// StreamRequest is the GetMarketplaceEvents request payload.
type StreamRequest struct {
	ContractAddresses []string `json:"contract_addresses,omitempty"`
	EventKinds        []string `json:"event_kinds,omitempty"`
	FromBlockTimestamp int64   `json:"from_block_timestamp,omitempty"`
}

// Event is one decoded marketplace event on the wire: a flattened
// projection.TokenEvent, declared as its own type so the wire shape
// stays decoupled from the storage model (per the teacher's own gen/
// boundary); only PublishingStore in this package refers to
// internal/projection.
type Event struct {
	EventID         string  `json:"event_id"`
	SubEventID      string  `json:"sub_event_id,omitempty"`
	ContractAddress string  `json:"contract_address"`
	ChainID         string  `json:"chain_id"`
	TokenIDDec      string  `json:"token_id_dec,omitempty"`
	Kind            string  `json:"kind"`
	BlockTimestamp  int64   `json:"block_timestamp"`
	From            string  `json:"from,omitempty"`
	To              string  `json:"to,omitempty"`
	Amount          *string `json:"amount,omitempty"`
	CurrencyAddress string  `json:"currency_address,omitempty"`
	OrderHash       string  `json:"order_hash,omitempty"`
}
