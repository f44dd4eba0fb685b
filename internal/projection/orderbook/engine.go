package orderbook

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

// Engine applies orderbook events onto the order store and the shared
// projection store (for Token/Offer side-effects) per spec §4.5.
type Engine struct {
	orders Store
	tokens projection.Store
	log    *zap.Logger
}

func NewEngine(orders Store, tokens projection.Store, log *zap.Logger) *Engine {
	return &Engine{orders: orders, tokens: tokens, log: log}
}

// PlacedEvent is the decoded payload of an OrderPlaced log.
type PlacedEvent struct {
	OrderHash       string
	OrderType       OrderType
	RouteType       RouteType
	CurrencyAddress string
	CurrencyChainID string
	Offerer         string
	TokenAddress    string
	TokenIDDec      string
	TokenIDHex      string
	Quantity        string
	StartAmount     string
	StartAmountDec  decimal.Decimal
	EndAmount       string
	StartDate       time.Time
	EndDate         time.Time
	BrokerID        string
	ChainID         string

	TxHash     string
	EventID    string
	SubEventID string
	Timestamp  int64
}

// Placed implements spec §4.5's Placed transition: (nothing) → PLACED.
func (e *Engine) Placed(ctx context.Context, ev PlacedEvent) error {
	startAmountETH := decimal.Zero
	if cur, err := e.tokens.GetCurrency(ctx, ev.CurrencyAddress, ev.CurrencyChainID); err == nil && cur != nil {
		if price, perr := decimal.NewFromString(cur.PriceInETH); perr == nil {
			startAmountETH = ev.StartAmountDec.Mul(price)
		}
	}

	order := Order{
		OrderHash:       ev.OrderHash,
		CreatedAt:       time.Unix(ev.Timestamp, 0),
		UpdatedAt:       time.Unix(ev.Timestamp, 0),
		OrderType:       ev.OrderType,
		RouteType:       ev.RouteType,
		CurrencyAddress: ev.CurrencyAddress,
		CurrencyChainID: ev.CurrencyChainID,
		Offerer:         ev.Offerer,
		TokenAddress:    ev.TokenAddress,
		TokenChainID:    ev.ChainID,
		TokenIDDec:      ev.TokenIDDec,
		TokenIDHex:      ev.TokenIDHex,
		Quantity:        ev.Quantity,
		StartAmount:     ev.StartAmount,
		EndAmount:       ev.EndAmount,
		StartAmountETH:  startAmountETH,
		StartDate:       ev.StartDate,
		EndDate:         ev.EndDate,
		BrokerID:        ev.BrokerID,
		Status:          StatusOpen,
	}
	if err := e.orders.UpsertOrder(ctx, order); err != nil {
		return fmt.Errorf("orderbook: upsert order: %w", err)
	}

	var eventKind projection.EventKind
	switch ev.OrderType {
	case OrderTypeOffer, OrderTypeCollectionOffer:
		eventKind = projection.EventOffer
		if ev.OrderType == OrderTypeCollectionOffer {
			eventKind = projection.EventCollectionOffer
		}
		if err := e.placeOffer(ctx, ev); err != nil {
			return err
		}
	case OrderTypeListing, OrderTypeAuction:
		eventKind = projection.EventListing
		if ev.OrderType == OrderTypeAuction {
			eventKind = projection.EventAuction
		}
		if err := e.placeListing(ctx, ev); err != nil {
			return err
		}
	}

	if err := e.orders.AppendOrderTransactionInfo(ctx, OrderTransactionInfo{
		TxHash: ev.TxHash, EventID: ev.EventID, SubEventID: ev.SubEventID,
		OrderHash: ev.OrderHash, Timestamp: ev.Timestamp, Kind: TxPlaced,
	}); err != nil {
		return fmt.Errorf("orderbook: append order tx info: %w", err)
	}

	return e.tokens.AppendTokenEvent(ctx, projection.TokenEvent{
		EventID: ev.EventID, SubEventID: ev.SubEventID,
		ContractAddress: ev.TokenAddress, ChainID: ev.ChainID, TokenIDDec: ev.TokenIDDec,
		Kind: eventKind, BlockTimestamp: ev.Timestamp, From: ev.Offerer, OrderHash: ev.OrderHash,
	})
}

// placeOffer inserts the Offer row and, only if the new amount exceeds
// the existing top bid, raises Token.top_bid_* (spec §4.5, property P4).
//
// A CollectionOffer carries no specific token id; per spec §9 open
// question 2, it still creates a placeholder Token row with metadata
// status TO_REFRESH (bug-compatible with the source it was distilled
// from).
func (e *Engine) placeOffer(ctx context.Context, ev PlacedEvent) error {
	tokenIDDec := ev.TokenIDDec
	if tokenIDDec == "" {
		tokenIDDec = "0"
	}

	if err := e.tokens.UpsertOffer(ctx, projection.Offer{
		OrderHash: ev.OrderHash, ContractAddress: ev.TokenAddress, ChainID: ev.ChainID,
		TokenIDDec: tokenIDDec, OfferMaker: ev.Offerer, OfferAmount: ev.StartAmount,
		CurrencyAddress: ev.CurrencyAddress, Quantity: ev.Quantity,
		StartDate: ev.StartDate, EndDate: ev.EndDate, OfferTimestamp: ev.Timestamp,
		Status: projection.OfferPlaced,
	}); err != nil {
		return fmt.Errorf("orderbook: upsert offer: %w", err)
	}

	tok, err := e.tokens.GetToken(ctx, ev.TokenAddress, ev.ChainID, tokenIDDec)
	if err != nil {
		return fmt.Errorf("orderbook: get token: %w", err)
	}
	if tok == nil {
		tok = &projection.Token{
			ContractAddress: ev.TokenAddress, ChainID: ev.ChainID, TokenIDDec: tokenIDDec,
			MetadataStatus: projection.MetadataToRefresh, Status: projection.TokenNone,
		}
	}

	amount := ev.StartAmountDec
	raise := tok.TopBidAmount == nil
	if !raise {
		existing, ok := decimal.NewFromString(*tok.TopBidAmount)
		raise = ok == nil && amount.GreaterThan(existing)
	}
	if raise {
		amountStr := amount.String()
		tok.TopBidAmount = &amountStr
		tok.TopBidMaker = ev.Offerer
		tok.TopBidHash = ev.OrderHash
	}
	tok.UpdatedTimestamp = ev.Timestamp
	return e.tokens.UpsertToken(ctx, *tok)
}

func (e *Engine) placeListing(ctx context.Context, ev PlacedEvent) error {
	tok, err := e.tokens.GetToken(ctx, ev.TokenAddress, ev.ChainID, ev.TokenIDDec)
	if err != nil {
		return fmt.Errorf("orderbook: get token: %w", err)
	}
	if tok == nil {
		tok = &projection.Token{
			ContractAddress: ev.TokenAddress, ChainID: ev.ChainID, TokenIDDec: ev.TokenIDDec,
			TokenIDHex: ev.TokenIDHex, MetadataStatus: projection.MetadataToRefresh,
		}
	}
	tok.ListingStartAmount = ev.StartAmount
	tok.ListingEndAmount = ev.EndAmount
	tok.ListingStartDate = ev.StartDate
	tok.ListingEndDate = ev.EndDate
	tok.ListingCurrency = ev.CurrencyAddress
	tok.Status = projection.TokenPlaced
	tok.UpdatedTimestamp = ev.Timestamp
	return e.tokens.UpsertToken(ctx, *tok)
}
