package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/decoder"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

type memStore struct {
	contracts   map[string]Contract
	tokens      map[string]Token
	tokenEvents map[string]TokenEvent
	offers      map[string]Offer
	currencies  map[string]Currency
}

func newMemStore() *memStore {
	return &memStore{
		contracts:   make(map[string]Contract),
		tokens:      make(map[string]Token),
		tokenEvents: make(map[string]TokenEvent),
		offers:      make(map[string]Offer),
		currencies:  make(map[string]Currency),
	}
}

func contractKey(address, chainID string) string { return address + "|" + chainID }
func tokenKey(contractAddress, chainID, tokenIDDec string) string {
	return contractAddress + "|" + chainID + "|" + tokenIDDec
}

func (m *memStore) UpsertContract(ctx context.Context, c Contract) error {
	m.contracts[contractKey(c.Address, c.ChainID)] = c
	return nil
}

func (m *memStore) GetContract(ctx context.Context, address, chainID string) (*Contract, error) {
	if c, ok := m.contracts[contractKey(address, chainID)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) UpsertToken(ctx context.Context, t Token) error {
	m.tokens[tokenKey(t.ContractAddress, t.ChainID, t.TokenIDDec)] = t
	return nil
}

func (m *memStore) GetToken(ctx context.Context, contractAddress, chainID, tokenIDDec string) (*Token, error) {
	if t, ok := m.tokens[tokenKey(contractAddress, chainID, tokenIDDec)]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *memStore) AppendTokenEvent(ctx context.Context, e TokenEvent) error {
	key := e.EventID
	if e.SubEventID != "" {
		key += "_" + e.SubEventID
	}
	m.tokenEvents[key] = e
	return nil
}

func (m *memStore) CleanBlock(ctx context.Context, blockNumber int64) error {
	for k, t := range m.tokens {
		if t.BlockTimestamp == blockNumber {
			delete(m.tokens, k)
		}
	}
	for k, e := range m.tokenEvents {
		if e.BlockTimestamp == blockNumber {
			delete(m.tokenEvents, k)
		}
	}
	for k, c := range m.contracts {
		if hasSurvivingToken(m, c.Address, c.ChainID) {
			continue
		}
		delete(m.contracts, k)
	}
	return nil
}

func (m *memStore) UpsertOffer(ctx context.Context, o Offer) error {
	m.offers[o.OrderHash] = o
	return nil
}

func (m *memStore) GetOffer(ctx context.Context, orderHash string) (*Offer, error) {
	if o, ok := m.offers[orderHash]; ok {
		return &o, nil
	}
	return nil, nil
}

func (m *memStore) DeleteOffer(ctx context.Context, orderHash string) error {
	delete(m.offers, orderHash)
	return nil
}

func (m *memStore) ListActiveOffers(ctx context.Context, contractAddress, chainID, tokenIDDec string) ([]Offer, error) {
	var out []Offer
	for _, o := range m.offers {
		if o.ContractAddress == contractAddress && o.ChainID == chainID && o.TokenIDDec == tokenIDDec && o.Status == OfferPlaced {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) DeleteOffersByMaker(ctx context.Context, contractAddress, chainID, tokenIDDec, maker string) error {
	for k, o := range m.offers {
		if o.ContractAddress == contractAddress && o.ChainID == chainID && o.TokenIDDec == tokenIDDec && o.OfferMaker == maker {
			delete(m.offers, k)
		}
	}
	return nil
}

func (m *memStore) GetCurrency(ctx context.Context, contractAddress, chainID string) (*Currency, error) {
	if c, ok := m.currencies[contractKey(contractAddress, chainID)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) UpsertCurrency(ctx context.Context, c Currency) error {
	m.currencies[contractKey(c.ContractAddress, c.ChainID)] = c
	return nil
}

func (m *memStore) ListToRefresh(ctx context.Context, limit int) ([]Token, error) {
	var out []Token
	for _, t := range m.tokens {
		if t.MetadataStatus == MetadataToRefresh {
			out = append(out, t)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func hasSurvivingToken(m *memStore, address, chainID string) bool {
	for _, t := range m.tokens {
		if t.ContractAddress == address && t.ChainID == chainID {
			return true
		}
	}
	return false
}

func hx(t *testing.T, s string) felt.Felt {
	t.Helper()
	f, err := felt.FromHex(s)
	require.NoError(t, err)
	return f
}

func mintEnvelope(t *testing.T) Envelope {
	log := decoder.Log{
		Keys: []felt.Felt{hx(t, "0x0"), felt.Zero, hx(t, "0xA"), felt.FromUint64(1), felt.FromUint64(0)},
	}
	// selector value does not matter here, only the shape.
	ev := decoder.Event{NFT721Transfer: &decoder.NFT721Transfer{
		From:    felt.Zero,
		To:      hx(t, "0xA"),
		TokenID: felt.U256FromWords(felt.FromUint64(1), felt.FromUint64(0)),
	}}
	_ = log
	return Envelope{
		ContractAddress: "0xC",
		ChainID:         "1",
		Standard:        classifier.NFT721,
		TxHash:          "0xtx1",
		EventIndex:      0,
		BlockTimestamp:  100,
		Event:           ev,
		Compliance:      decoder.Canonical,
	}
}

// S1 — first-sighting mint.
func TestApply_FirstSightingMint(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, nil, zap.NewNop())

	env := mintEnvelope(t)
	require.NoError(t, eng.Apply(context.Background(), env))

	c, err := store.GetContract(context.Background(), "0xC", "1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, classifier.NFT721, c.Standard)

	tok, err := store.GetToken(context.Background(), "0xC", "1", "1")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, hx(t, "0xA").Hex(), tok.CurrentOwner)
	assert.Equal(t, MetadataToRefresh, tok.MetadataStatus)
	assert.Equal(t, hx(t, "0xA").Hex(), tok.MintedTo)
	assert.Equal(t, "0xtx1", tok.MintTxHash)
	assert.False(t, tok.MintedAt.IsZero())

	te, ok := store.tokenEvents["0xtx1_0"]
	require.True(t, ok)
	assert.Equal(t, EventMint, te.Kind)
	assert.Equal(t, "", te.From)
	assert.Equal(t, hx(t, "0xA").Hex(), te.To)
}

// Property P3: applying the same event twice yields the same state.
func TestProperty_EventIdempotence(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, nil, zap.NewNop())
	env := mintEnvelope(t)

	require.NoError(t, eng.Apply(context.Background(), env))
	first, err := store.GetToken(context.Background(), "0xC", "1", "1")
	require.NoError(t, err)

	require.NoError(t, eng.Apply(context.Background(), env))
	second, err := store.GetToken(context.Background(), "0xC", "1", "1")
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
	assert.Len(t, store.tokenEvents, 1)
}

// S6 — block clean after reorg.
func TestCleanBlock(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, nil, zap.NewNop())
	env := mintEnvelope(t)
	require.NoError(t, eng.Apply(context.Background(), env))

	require.NoError(t, eng.CleanBlock(context.Background(), 100))

	tok, err := store.GetToken(context.Background(), "0xC", "1", "1")
	require.NoError(t, err)
	assert.Nil(t, tok)

	c, err := store.GetContract(context.Background(), "0xC", "1")
	require.NoError(t, err)
	assert.Nil(t, c)

	// idempotent: calling again is a no-op, not an error.
	require.NoError(t, eng.CleanBlock(context.Background(), 100))
}
