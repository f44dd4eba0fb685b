// Package projection implements the projection engine (spec component
// C4): applying decoded chain events onto the queryable marketplace
// state (contracts, tokens, token events, offers).
package projection

import (
	"time"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

// MetadataStatus tracks whether a token's off-chain metadata has been
// fetched yet.
type MetadataStatus string

const (
	MetadataToRefresh MetadataStatus = "TO_REFRESH"
	MetadataOK        MetadataStatus = "OK"
	MetadataError     MetadataStatus = "ERROR"
)

// TokenStatus mirrors the orderbook state machine's effect on a token
// (spec §4.5); NONE means no active order touches this token.
type TokenStatus string

const (
	TokenNone      TokenStatus = "NONE"
	TokenPlaced    TokenStatus = "PLACED"
	TokenFulfilled TokenStatus = "FULFILLED"
	TokenExecuted  TokenStatus = "EXECUTED"
	TokenCancelled TokenStatus = "CANCELLED"
)

// EventKind enumerates every TokenEvent variant the system appends
// (spec §3).
type EventKind string

const (
	EventMint              EventKind = "MINT"
	EventBurn              EventKind = "BURN"
	EventTransfer          EventKind = "TRANSFER"
	EventListing           EventKind = "LISTING"
	EventAuction           EventKind = "AUCTION"
	EventOffer             EventKind = "OFFER"
	EventCollectionOffer   EventKind = "COLLECTION_OFFER"
	EventFulfill           EventKind = "FULFILL"
	EventExecuted          EventKind = "EXECUTED"
	EventSale              EventKind = "SALE"
	EventCancelled         EventKind = "CANCELLED"
	EventRollback          EventKind = "ROLLBACK"
	EventListingCancelled  EventKind = "LISTING_CANCELLED"
	EventAuctionCancelled  EventKind = "AUCTION_CANCELLED"
	EventOfferCancelled    EventKind = "OFFER_CANCELLED"
	EventExpiredListing    EventKind = "EXPIRED_LISTING"
	EventExpiredOffer      EventKind = "EXPIRED_OFFER"
)

// Contract is a marketplace-known contract, keyed by (address, chain_id).
type Contract struct {
	Address     string
	ChainID     string
	Standard    classifier.Standard
	Name        string
	Symbol      string
	Image       string
	DeployedAt  time.Time
	UpdatedAt   time.Time
}

// Token is the projected ownership/listing/offer state of one NFT,
// keyed by (contract_address, chain_id, token_id_dec).
type Token struct {
	ContractAddress string
	ChainID         string
	TokenIDDec      string
	TokenIDHex      string
	CurrentOwner    string
	HeldSince       time.Time
	LastPrice       *string

	ListingStartAmount string
	ListingEndAmount   string
	ListingStartDate   time.Time
	ListingEndDate     time.Time
	ListingCurrency    string

	TopBidAmount *string
	TopBidMaker  string
	TopBidHash   string

	// MintedAt/MintedTo/MintTxHash record the mint action (spec §4.4
	// step 3). The engine sets them when it applies a MINT transfer; the
	// Postgres store keeps the first values it recorded.
	MintedAt   time.Time
	MintedTo   string
	MintTxHash string

	Quantity        string
	MetadataStatus  MetadataStatus
	MetadataURI     string
	Status          TokenStatus
	BuyInProgress   bool
	BlockTimestamp  int64
	UpdatedTimestamp int64
}

// TokenEvent is an append-only audit row, keyed by (event_id, sub_event_id).
type TokenEvent struct {
	EventID         string
	SubEventID      string
	ContractAddress string
	ChainID         string
	TokenIDDec      string
	Kind            EventKind
	BlockTimestamp  int64
	From            string
	To              string
	Amount          *string
	CurrencyAddress string
	OrderHash       string
}

// OfferStatus mirrors the state machine in spec §4.5.
type OfferStatus string

const (
	OfferPlaced    OfferStatus = "PLACED"
	OfferFulfilled OfferStatus = "FULFILLED"
	OfferCancelled OfferStatus = "CANCELLED"
	OfferExecuted  OfferStatus = "EXECUTED"
)

// Offer is a marketplace offer/bid, keyed globally by OrderHash.
type Offer struct {
	OrderHash       string
	ContractAddress string
	ChainID         string
	TokenIDDec      string
	OfferMaker      string
	OfferAmount     string // hex u256
	CurrencyAddress string
	Quantity        string
	StartDate       time.Time
	EndDate         time.Time
	OfferTimestamp  int64
	Status          OfferStatus
}

// Currency is an ERC-20 payment token's priced reference data, keyed
// by (contract_address, chain_id). Populated out-of-band from a price
// feed; GetCurrency returning nil means "unknown, treat as worthless"
// (spec §4.5 start_amount_eth computation defaults to zero).
type Currency struct {
	ContractAddress string
	ChainID         string
	Symbol          string
	Decimals        int
	PriceInETH      string
	PriceInUSD      string
	PriceUpdatedAt  time.Time
}

// TokenIDCodec exposes the canonical decimal/hex pair for a u256 token
// id (spec §3, §9) so callers never hand-roll the conversion.
func TokenIDCodec(id felt.U256) (dec string, hex string) {
	return felt.TokenIDDecimalAndHex(id)
}
