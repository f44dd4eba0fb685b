package marketplaceevents

import (
	"context"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

// PublishingStore decorates a projection.Store so every appended
// TokenEvent is also fanned out over the GetMarketplaceEvents stream,
// keeping the projection engine itself free of any gRPC dependency.
type PublishingStore struct {
	projection.Store
	svc *Service
}

func NewPublishingStore(store projection.Store, svc *Service) *PublishingStore {
	return &PublishingStore{Store: store, svc: svc}
}

func (p *PublishingStore) AppendTokenEvent(ctx context.Context, e projection.TokenEvent) error {
	if err := p.Store.AppendTokenEvent(ctx, e); err != nil {
		return err
	}
	p.svc.Publish(&Event{
		EventID:         e.EventID,
		SubEventID:      e.SubEventID,
		ContractAddress: e.ContractAddress,
		ChainID:         e.ChainID,
		TokenIDDec:      e.TokenIDDec,
		Kind:            string(e.Kind),
		BlockTimestamp:  e.BlockTimestamp,
		From:            e.From,
		To:              e.To,
		Amount:          e.Amount,
		CurrencyAddress: e.CurrencyAddress,
		OrderHash:       e.OrderHash,
	})
	return nil
}
