// Package orderbook implements the orderbook state machine (spec
// component C5): order lifecycle transitions with cross-entity
// side-effects on tokens, offers, and the top-bid invariant.
package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes listings/auctions (sell-side) from
// offers/collection-offers (buy-side).
type OrderType string

const (
	OrderTypeListing          OrderType = "LISTING"
	OrderTypeAuction          OrderType = "AUCTION"
	OrderTypeOffer            OrderType = "OFFER"
	OrderTypeCollectionOffer  OrderType = "COLLECTION_OFFER"
)

// RouteType names the pair of asset-class endpoints an order exchanges.
type RouteType string

const (
	RouteERC20ToERC721  RouteType = "ERC20_TO_ERC721"
	RouteERC721ToERC20  RouteType = "ERC721_TO_ERC20"
	RouteERC20ToERC1155 RouteType = "ERC20_TO_ERC1155"
	RouteERC1155ToERC20 RouteType = "ERC1155_TO_ERC20"
)

// Status is an order's lifecycle state (spec §4.5).
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCancelled Status = "CANCELLED"
	StatusExecuted  Status = "EXECUTED"
)

// CancelledReason classifies why an order was cancelled.
type CancelledReason string

const (
	CancelledUser       CancelledReason = "USER"
	CancelledByNewOrder CancelledReason = "BY_NEW_ORDER"
	CancelledAssetFault CancelledReason = "ASSET_FAULT"
	CancelledOwnership  CancelledReason = "OWNERSHIP"
	CancelledUnknown    CancelledReason = "UNKNOWN"
)

// Order is the orderbook projection of one order (spec §3).
type Order struct {
	OrderHash        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	OrderType        OrderType
	RouteType        RouteType
	CurrencyAddress  string
	CurrencyChainID  string
	Offerer          string
	TokenAddress     string
	// TokenChainID is the indexer chain the token itself lives on
	// (spec §3's Order has no separate field for this, but Token and
	// TokenEvent are always keyed by it — see orderbookdecoder.Context.
	// ChainID, distinct from CurrencyChainID, the currency's chain).
	TokenChainID     string
	TokenIDDec       string
	TokenIDHex       string
	Quantity         string // hex u256
	StartAmount      string // hex u256
	EndAmount        string // hex u256
	StartAmountETH   decimal.Decimal
	StartDate        time.Time
	EndDate          time.Time
	BrokerID         string
	CancelledOrderHash string
	Status           Status

	// PrevWasFulfilled records whether the immediately preceding event
	// was Fulfilled. Nothing in this package sets or reads it and the
	// Postgres store does not persist it; Rollback learns this from
	// Store.LastTransactionInfo instead (spec §4.5 tie-break).
	PrevWasFulfilled bool
}

// TransactionEventKind enumerates an OrderTransactionInfo's kind.
type TransactionEventKind string

const (
	TxPlaced    TransactionEventKind = "PLACED"
	TxCancelled TransactionEventKind = "CANCELLED"
	TxFulfilled TransactionEventKind = "FULFILLED"
	TxExecuted  TransactionEventKind = "EXECUTED"
)

// OrderTransactionInfo is an append-only audit row (spec §3).
type OrderTransactionInfo struct {
	TxHash          string
	EventID         string
	SubEventID      string
	OrderHash       string
	Timestamp       int64
	Kind            TransactionEventKind
	CancelledReason CancelledReason
	RelatedOrderHash string
	Fulfiller       string
	From            string
	To              string
}
