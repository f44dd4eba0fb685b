package projection

import "context"

// Store is the projection store capability consumed by the engine
// (spec §6). A concrete implementation (e.g. internal/storage/postgres)
// backs it with whatever engine the operator chooses — the spec
// explicitly leaves the storage engine a non-goal.
type Store interface {
	UpsertContract(ctx context.Context, c Contract) error
	GetContract(ctx context.Context, address, chainID string) (*Contract, error)

	UpsertToken(ctx context.Context, t Token) error
	GetToken(ctx context.Context, contractAddress, chainID, tokenIDDec string) (*Token, error)

	AppendTokenEvent(ctx context.Context, e TokenEvent) error

	UpsertOffer(ctx context.Context, o Offer) error
	GetOffer(ctx context.Context, orderHash string) (*Offer, error)
	DeleteOffer(ctx context.Context, orderHash string) error
	// ListActiveOffers returns PLACED offers on a token whose EndDate
	// has not yet passed, used to recompute the top-bid invariant
	// (spec §4.5, property P4).
	ListActiveOffers(ctx context.Context, contractAddress, chainID, tokenIDDec string) ([]Offer, error)
	// DeleteOffersByMaker removes every offer on a token made by
	// maker, used on Executed to clear the new owner's own bids
	// (spec §4.5).
	DeleteOffersByMaker(ctx context.Context, contractAddress, chainID, tokenIDDec, maker string) error

	// CleanBlock deletes every Contract/Token/TokenEvent row whose
	// BlockTimestamp equals blockNumber, in chunks bounded by spec
	// §4.4's 25-item batch constraint. Implementations backed by a
	// relational store may perform this as a single statement per
	// table; the contract only requires boundedness and retry
	// tolerance, not the literal chunk size.
	CleanBlock(ctx context.Context, blockNumber int64) error

	// GetCurrency and UpsertCurrency back the start_amount_eth
	// computation (spec §4.5; supplemented feature, see DESIGN.md).
	// GetCurrency returns (nil, nil) on a miss.
	GetCurrency(ctx context.Context, contractAddress, chainID string) (*Currency, error)
	UpsertCurrency(ctx context.Context, c Currency) error

	// ListToRefresh pages tokens whose metadata_status is TO_REFRESH,
	// the read side of the external metadata-fetcher boundary (spec
	// §1; supplemented feature).
	ListToRefresh(ctx context.Context, limit int) ([]Token, error)
}

// MetadataFetcher is the chain capability the engine uses to enrich a
// newly-seen token (spec §4.4 step 2): name/symbol/token_uri lookups.
type MetadataFetcher interface {
	ContractName(ctx context.Context, address string) (string, error)
	ContractSymbol(ctx context.Context, address string) (string, error)
	TokenURI(ctx context.Context, address string, tokenIDDec string) (string, error)
}
