package orderbook

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/felt"
	"github.com/cairo-marketplace/indexer/internal/projection"
)

func zapHash(orderHash string) zap.Field {
	return zap.String("order_hash", orderHash)
}

// CancelledEvent is the decoded payload of an OrderCancelled log.
type CancelledEvent struct {
	OrderHash  string
	Reason     CancelledReason
	Timestamp  int64
	TxHash     string
	EventID    string
	SubEventID string
}

// Cancelled implements spec §4.5's Cancelled transition: PLACED →
// CANCELLED (terminal).
func (e *Engine) Cancelled(ctx context.Context, ev CancelledEvent) error {
	order, err := e.orders.GetOrder(ctx, ev.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get order: %w", err)
	}
	if order == nil {
		e.log.Warn("cancelled event for unknown order", zapHash(ev.OrderHash))
		return nil
	}

	order.Status = StatusCancelled
	order.UpdatedAt = time.Unix(ev.Timestamp, 0)
	if err := e.orders.UpsertOrder(ctx, *order); err != nil {
		return fmt.Errorf("orderbook: upsert order: %w", err)
	}

	eventKind := projection.EventCancelled
	switch order.OrderType {
	case OrderTypeListing:
		eventKind = projection.EventListingCancelled
		if err := e.clearListing(ctx, order); err != nil {
			return err
		}
	case OrderTypeAuction:
		eventKind = projection.EventAuctionCancelled
		if err := e.clearListing(ctx, order); err != nil {
			return err
		}
	case OrderTypeOffer, OrderTypeCollectionOffer:
		eventKind = projection.EventOfferCancelled
		if err := e.cancelOffer(ctx, order); err != nil {
			return err
		}
	}

	if err := e.orders.AppendOrderTransactionInfo(ctx, OrderTransactionInfo{
		TxHash: ev.TxHash, EventID: ev.EventID, SubEventID: ev.SubEventID,
		OrderHash: ev.OrderHash, Timestamp: ev.Timestamp, Kind: TxCancelled,
		CancelledReason: ev.Reason,
	}); err != nil {
		return fmt.Errorf("orderbook: append order tx info: %w", err)
	}
	if err := e.orders.RemoveActiveOrder(ctx, ev.OrderHash); err != nil {
		return fmt.Errorf("orderbook: remove active order: %w", err)
	}

	return e.tokens.AppendTokenEvent(ctx, projection.TokenEvent{
		EventID: ev.EventID, SubEventID: ev.SubEventID,
		ContractAddress: order.TokenAddress, ChainID: order.TokenChainID, TokenIDDec: order.TokenIDDec,
		Kind: eventKind, BlockTimestamp: ev.Timestamp, OrderHash: ev.OrderHash,
	})
}

func (e *Engine) clearListing(ctx context.Context, order *Order) error {
	tok, err := e.tokens.GetToken(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec)
	if err != nil || tok == nil {
		return err
	}
	tok.ListingStartAmount = ""
	tok.ListingEndAmount = ""
	tok.ListingCurrency = ""
	tok.Status = projection.TokenCancelled
	return e.tokens.UpsertToken(ctx, *tok)
}

func (e *Engine) cancelOffer(ctx context.Context, order *Order) error {
	offer, err := e.tokens.GetOffer(ctx, order.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get offer: %w", err)
	}
	if offer == nil {
		return nil
	}
	offer.Status = projection.OfferCancelled
	if err := e.tokens.UpsertOffer(ctx, *offer); err != nil {
		return fmt.Errorf("orderbook: upsert offer: %w", err)
	}
	return e.recomputeTopBid(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec)
}

// recomputeTopBid enforces property P4: Token.top_bid_amount equals the
// maximum offer_amount among PLACED offers with end_date >= now, or
// null if none remain.
func (e *Engine) recomputeTopBid(ctx context.Context, contractAddress, chainID, tokenIDDec string) error {
	tok, err := e.tokens.GetToken(ctx, contractAddress, chainID, tokenIDDec)
	if err != nil || tok == nil {
		return err
	}

	active, err := e.tokens.ListActiveOffers(ctx, contractAddress, chainID, tokenIDDec)
	if err != nil {
		return fmt.Errorf("orderbook: list active offers: %w", err)
	}

	var best *projection.Offer
	var bestAmount decimal.Decimal
	for i := range active {
		// OfferAmount is a hex u256 on decoded orders; ParseTokenID also
		// accepts plain decimal strings.
		u, perr := felt.ParseTokenID(active[i].OfferAmount)
		if perr != nil {
			continue
		}
		amt := decimal.NewFromBigInt(u.BigInt(), 0)
		if best == nil || amt.GreaterThan(bestAmount) {
			best = &active[i]
			bestAmount = amt
		}
	}

	if best == nil {
		tok.TopBidAmount = nil
		tok.TopBidMaker = ""
		tok.TopBidHash = ""
	} else {
		amountStr := bestAmount.String()
		tok.TopBidAmount = &amountStr
		tok.TopBidMaker = best.OfferMaker
		tok.TopBidHash = best.OrderHash
	}
	return e.tokens.UpsertToken(ctx, *tok)
}

// FulfilledEvent is the decoded payload of an OrderFulfilled log.
type FulfilledEvent struct {
	OrderHash  string
	Fulfiller  string
	Timestamp  int64
	TxHash     string
	EventID    string
	SubEventID string
}

// Fulfilled implements spec §4.5's Fulfilled transition: PLACED →
// PLACED (offer flagged). Not terminal; an Executed or Rollback follows.
func (e *Engine) Fulfilled(ctx context.Context, ev FulfilledEvent) error {
	order, err := e.orders.GetOrder(ctx, ev.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get order: %w", err)
	}
	if order == nil {
		e.log.Warn("fulfilled event for unknown order", zapHash(ev.OrderHash))
		return nil
	}

	if offer, err := e.tokens.GetOffer(ctx, ev.OrderHash); err == nil && offer != nil {
		offer.Status = projection.OfferFulfilled
		if err := e.tokens.UpsertOffer(ctx, *offer); err != nil {
			return fmt.Errorf("orderbook: upsert offer: %w", err)
		}
	}

	tok, err := e.tokens.GetToken(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec)
	if err != nil {
		return fmt.Errorf("orderbook: get token: %w", err)
	}
	if tok != nil {
		tok.BuyInProgress = true
		tok.Status = projection.TokenFulfilled
		if err := e.tokens.UpsertToken(ctx, *tok); err != nil {
			return fmt.Errorf("orderbook: upsert token: %w", err)
		}
	}

	if err := e.orders.AppendOrderTransactionInfo(ctx, OrderTransactionInfo{
		TxHash: ev.TxHash, EventID: ev.EventID, SubEventID: ev.SubEventID,
		OrderHash: ev.OrderHash, Timestamp: ev.Timestamp, Kind: TxFulfilled, Fulfiller: ev.Fulfiller,
	}); err != nil {
		return fmt.Errorf("orderbook: append order tx info: %w", err)
	}

	return e.tokens.AppendTokenEvent(ctx, projection.TokenEvent{
		EventID: ev.EventID, SubEventID: ev.SubEventID,
		ContractAddress: order.TokenAddress, ChainID: order.TokenChainID, TokenIDDec: order.TokenIDDec,
		Kind: projection.EventFulfill, BlockTimestamp: ev.Timestamp, OrderHash: ev.OrderHash,
	})
}

// ExecutedEvent is the decoded payload of an OrderExecuted log. From/To
// are absent in the V0 wire payload; per spec §9 open question 3, the
// engine derives them the same way the source does (see Executed below).
type ExecutedEvent struct {
	OrderHash  string
	From       string
	To         string
	Timestamp  int64
	TxHash     string
	EventID    string
	SubEventID string
}

// Executed implements spec §4.5's Executed transition: PLACED →
// EXECUTED (terminal), with the token ownership/listing/top-bid
// side-effects.
func (e *Engine) Executed(ctx context.Context, ev ExecutedEvent) error {
	order, err := e.orders.GetOrder(ctx, ev.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get order: %w", err)
	}
	if order == nil {
		e.log.Warn("executed event for unknown order", zapHash(ev.OrderHash))
		return nil
	}

	tok, err := e.tokens.GetToken(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec)
	if err != nil {
		return fmt.Errorf("orderbook: get token: %w", err)
	}
	if tok == nil {
		tok = &projection.Token{ContractAddress: order.TokenAddress, ChainID: order.TokenChainID, TokenIDDec: order.TokenIDDec}
	}

	newOwner := ev.To
	priorOwner := ev.From
	offer, err := e.tokens.GetOffer(ctx, ev.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get offer: %w", err)
	}
	if offer != nil {
		// Order corresponds to a buy-side offer: the maker becomes the
		// new owner, the token's previous owner is the seller.
		newOwner = offer.OfferMaker
		priorOwner = tok.CurrentOwner
	} else if newOwner == "" {
		// Listing execution, V0 payload: the fulfiller recorded by the
		// preceding Fulfilled transaction info is the new owner.
		last, lerr := e.orders.LastTransactionInfo(ctx, ev.OrderHash)
		if lerr == nil && last != nil && last.Kind == TxFulfilled {
			newOwner = last.Fulfiller
		}
	}

	price := order.StartAmount
	if offer != nil {
		price = offer.OfferAmount
	}

	tok.CurrentOwner = newOwner
	tok.LastPrice = &price
	tok.ListingStartAmount = ""
	tok.ListingEndAmount = ""
	tok.ListingCurrency = ""
	tok.TopBidAmount = nil
	tok.TopBidMaker = ""
	tok.TopBidHash = ""
	tok.HeldSince = time.Unix(ev.Timestamp, 0)
	tok.BuyInProgress = false
	tok.Status = projection.TokenExecuted
	tok.UpdatedTimestamp = ev.Timestamp

	if newOwner != "" {
		if err := e.tokens.DeleteOffersByMaker(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec, newOwner); err != nil {
			return fmt.Errorf("orderbook: delete offers by maker: %w", err)
		}
	}

	if err := e.tokens.UpsertToken(ctx, *tok); err != nil {
		return fmt.Errorf("orderbook: upsert token: %w", err)
	}
	if err := e.recomputeTopBid(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec); err != nil {
		return err
	}

	if offer != nil {
		offer.Status = projection.OfferExecuted
		if err := e.tokens.UpsertOffer(ctx, *offer); err != nil {
			return fmt.Errorf("orderbook: upsert offer: %w", err)
		}
	}

	order.Status = StatusExecuted
	order.UpdatedAt = time.Unix(ev.Timestamp, 0)
	if err := e.orders.UpsertOrder(ctx, *order); err != nil {
		return fmt.Errorf("orderbook: upsert order: %w", err)
	}

	if err := e.orders.AppendOrderTransactionInfo(ctx, OrderTransactionInfo{
		TxHash: ev.TxHash, EventID: ev.EventID, SubEventID: ev.SubEventID,
		OrderHash: ev.OrderHash, Timestamp: ev.Timestamp, Kind: TxExecuted,
		From: priorOwner, To: newOwner,
	}); err != nil {
		return fmt.Errorf("orderbook: append order tx info: %w", err)
	}
	if err := e.orders.RemoveActiveOrder(ctx, ev.OrderHash); err != nil {
		return fmt.Errorf("orderbook: remove active order: %w", err)
	}

	return e.tokens.AppendTokenEvent(ctx, projection.TokenEvent{
		EventID: ev.EventID, SubEventID: ev.SubEventID,
		ContractAddress: order.TokenAddress, ChainID: order.TokenChainID, TokenIDDec: order.TokenIDDec,
		Kind: projection.EventSale, BlockTimestamp: ev.Timestamp,
		From: priorOwner, To: newOwner, Amount: &price, OrderHash: ev.OrderHash,
	})
}

// RollbackEvent is the decoded payload of a Rollback log: the producing
// chain reverted the latest status change of the named order.
type RollbackEvent struct {
	OrderHash  string
	Reason     string
	Timestamp  int64
	TxHash     string
	EventID    string
	SubEventID string
}

// Rollback implements spec §4.5's Rollback transition: revert to
// PLACED, clearing BuyInProgress if the preceding event was Fulfilled.
func (e *Engine) Rollback(ctx context.Context, ev RollbackEvent) error {
	order, err := e.orders.GetOrder(ctx, ev.OrderHash)
	if err != nil {
		return fmt.Errorf("orderbook: get order: %w", err)
	}
	if order == nil {
		e.log.Warn("rollback event for unknown order", zapHash(ev.OrderHash))
		return nil
	}

	order.Status = StatusOpen
	order.UpdatedAt = time.Unix(ev.Timestamp, 0)
	if err := e.orders.UpsertOrder(ctx, *order); err != nil {
		return fmt.Errorf("orderbook: upsert order: %w", err)
	}

	last, err := e.orders.LastTransactionInfo(ctx, ev.OrderHash)
	if err == nil && last != nil && last.Kind == TxFulfilled {
		tok, terr := e.tokens.GetToken(ctx, order.TokenAddress, order.TokenChainID, order.TokenIDDec)
		if terr == nil && tok != nil {
			tok.BuyInProgress = false
			tok.Status = projection.TokenPlaced
			if err := e.tokens.UpsertToken(ctx, *tok); err != nil {
				return fmt.Errorf("orderbook: upsert token: %w", err)
			}
		}
	}

	if err := e.orders.AppendOrderTransactionInfo(ctx, OrderTransactionInfo{
		TxHash: ev.TxHash, EventID: ev.EventID, SubEventID: ev.SubEventID,
		OrderHash: ev.OrderHash, Timestamp: ev.Timestamp, Kind: TxPlaced,
		CancelledReason: CancelledUnknown,
	}); err != nil {
		return fmt.Errorf("orderbook: append order tx info: %w", err)
	}

	return e.tokens.AppendTokenEvent(ctx, projection.TokenEvent{
		EventID: ev.EventID, SubEventID: ev.SubEventID,
		ContractAddress: order.TokenAddress, ChainID: order.TokenChainID, TokenIDDec: order.TokenIDDec,
		Kind: projection.EventRollback, BlockTimestamp: ev.Timestamp, OrderHash: ev.OrderHash,
	})
}
