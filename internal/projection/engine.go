package projection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/decoder"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

// Engine applies decoded events onto the projection store (spec §4.4).
type Engine struct {
	store    Store
	metadata MetadataFetcher
	log      *zap.Logger
}

func NewEngine(store Store, metadata MetadataFetcher, log *zap.Logger) *Engine {
	return &Engine{store: store, metadata: metadata, log: log}
}

// Envelope carries everything the engine needs about the log's
// position and classification alongside the decoded event itself.
type Envelope struct {
	ContractAddress string
	ChainID         string
	Standard        classifier.Standard
	TxHash          string
	EventIndex      int
	BlockTimestamp  int64
	Event           decoder.Event
	Compliance      decoder.Compliance
}

func (e Envelope) eventID() string {
	return fmt.Sprintf("%s_%d", e.TxHash, e.EventIndex)
}

// Apply projects one decoded event (spec §4.4 steps 1-4). It is
// idempotent: applying the same envelope twice leaves the same state
// (property P3), since every write is an upsert on a natural key.
func (eng *Engine) Apply(ctx context.Context, env Envelope) error {
	if err := eng.ensureContract(ctx, env); err != nil {
		return err
	}

	switch {
	case env.Event.NFT721Transfer != nil:
		return eng.applyNFT721Transfer(ctx, env, *env.Event.NFT721Transfer)
	case env.Event.NFT1155TransferSingle != nil:
		return eng.applyNFT1155TransferSingle(ctx, env, *env.Event.NFT1155TransferSingle)
	case env.Event.NFT1155TransferBatch != nil:
		return eng.applyNFT1155TransferBatch(ctx, env, *env.Event.NFT1155TransferBatch)
	case env.Event.NFT1155URI != nil:
		return eng.applyURI(ctx, env, *env.Event.NFT1155URI)
	case env.Event.FunTransfer != nil:
		return eng.appendFunTransferEvent(ctx, env, *env.Event.FunTransfer)
	case env.Event.SEC1400Transfer != nil:
		return eng.appendSEC1400TransferEvent(ctx, env, *env.Event.SEC1400Transfer)
	default:
		// Approval/ApprovalForAll variants carry no projected state
		// change beyond the first-sighting contract upsert above.
		return nil
	}
}

func (eng *Engine) ensureContract(ctx context.Context, env Envelope) error {
	existing, err := eng.store.GetContract(ctx, env.ContractAddress, env.ChainID)
	if err != nil {
		return fmt.Errorf("projection: get contract: %w", err)
	}
	if existing != nil {
		return nil
	}

	now := time.Now()
	c := Contract{
		Address:    env.ContractAddress,
		ChainID:    env.ChainID,
		Standard:   env.Standard,
		DeployedAt: now,
		UpdatedAt:  now,
	}
	if eng.metadata != nil {
		if name, err := eng.metadata.ContractName(ctx, env.ContractAddress); err == nil {
			c.Name = name
		}
		if symbol, err := eng.metadata.ContractSymbol(ctx, env.ContractAddress); err == nil {
			c.Symbol = symbol
		}
	}
	return eng.store.UpsertContract(ctx, c)
}

func (eng *Engine) applyNFT721Transfer(ctx context.Context, env Envelope, ev decoder.NFT721Transfer) error {
	return eng.applyTransferCommon(ctx, env, ev.From, ev.To, ev.TokenID, "1")
}

func (eng *Engine) applyNFT1155TransferSingle(ctx context.Context, env Envelope, ev decoder.NFT1155TransferSingle) error {
	return eng.applyTransferCommon(ctx, env, ev.From, ev.To, ev.ID, ev.Value.Decimal())
}

func (eng *Engine) applyNFT1155TransferBatch(ctx context.Context, env Envelope, ev decoder.NFT1155TransferBatch) error {
	for i, id := range ev.IDs {
		sub := fmt.Sprintf("%d", i)
		itemEnv := env
		if err := eng.applyTransferCommonSub(ctx, itemEnv, ev.From, ev.To, id, ev.Values[i].Decimal(), sub); err != nil {
			return err
		}
	}
	return nil
}

// applyTransferCommon projects a single-token transfer-family event
// (spec §4.4 steps 2-3): upsert the Token, record mint/burn action, and
// append the TokenEvent.
func (eng *Engine) applyTransferCommon(ctx context.Context, env Envelope, from, to felt.Felt, tokenID felt.U256, quantity string) error {
	return eng.applyTransferCommonSub(ctx, env, from, to, tokenID, quantity, "")
}

func (eng *Engine) applyTransferCommonSub(ctx context.Context, env Envelope, from, to felt.Felt, tokenID felt.U256, quantity string, subEventID string) error {
	dec, hex := TokenIDCodec(tokenID)

	existing, err := eng.store.GetToken(ctx, env.ContractAddress, env.ChainID, dec)
	if err != nil {
		return fmt.Errorf("projection: get token: %w", err)
	}

	tok := Token{
		ContractAddress:  env.ContractAddress,
		ChainID:          env.ChainID,
		TokenIDDec:       dec,
		TokenIDHex:       hex,
		CurrentOwner:     to.Hex(),
		HeldSince:        time.Unix(env.BlockTimestamp, 0),
		Quantity:         quantity,
		MetadataStatus:   MetadataOK,
		Status:           TokenNone,
		BlockTimestamp:   env.BlockTimestamp,
		UpdatedTimestamp: env.BlockTimestamp,
	}
	if existing != nil {
		tok = *existing
		tok.CurrentOwner = to.Hex()
		tok.HeldSince = time.Unix(env.BlockTimestamp, 0)
		tok.UpdatedTimestamp = env.BlockTimestamp
	} else {
		tok.MetadataStatus = MetadataToRefresh
		if eng.metadata != nil {
			if uri, err := eng.metadata.TokenURI(ctx, env.ContractAddress, dec); err == nil {
				tok.MetadataURI = uri
			}
		}
	}

	kind := EventTransfer
	switch decoder.ClassifyAction(from, to) {
	case decoder.ActionMint:
		kind = EventMint
		// spec §4.4 step 3: record the mint timestamp/address/tx hash
		// on the token itself, not only on the TokenEvent row.
		tok.MintedAt = time.Unix(env.BlockTimestamp, 0)
		tok.MintedTo = to.Hex()
		tok.MintTxHash = env.TxHash
	case decoder.ActionBurn:
		kind = EventBurn
	}

	if err := eng.store.UpsertToken(ctx, tok); err != nil {
		return fmt.Errorf("projection: upsert token: %w", err)
	}

	te := TokenEvent{
		EventID:         env.eventID(),
		SubEventID:      subEventID,
		ContractAddress: env.ContractAddress,
		ChainID:         env.ChainID,
		TokenIDDec:      dec,
		Kind:            kind,
		BlockTimestamp:  env.BlockTimestamp,
		From:            nonZeroHex(from),
		To:              nonZeroHex(to),
	}
	return eng.store.AppendTokenEvent(ctx, te)
}

func (eng *Engine) applyURI(ctx context.Context, env Envelope, ev decoder.NFT1155URI) error {
	dec, hex := TokenIDCodec(ev.ID)
	existing, err := eng.store.GetToken(ctx, env.ContractAddress, env.ChainID, dec)
	if err != nil {
		return fmt.Errorf("projection: get token: %w", err)
	}

	tok := Token{
		ContractAddress:  env.ContractAddress,
		ChainID:          env.ChainID,
		TokenIDDec:       dec,
		TokenIDHex:       hex,
		MetadataStatus:   MetadataOK,
		MetadataURI:      ev.Value,
		BlockTimestamp:   env.BlockTimestamp,
		UpdatedTimestamp: env.BlockTimestamp,
	}
	if existing != nil {
		tok = *existing
	}
	tok.MetadataURI = ev.Value
	tok.MetadataStatus = MetadataOK
	tok.UpdatedTimestamp = env.BlockTimestamp

	return eng.store.UpsertToken(ctx, tok)
}

// appendFunTransferEvent records a fungible transfer as a TokenEvent
// without a Token row: fungible balances are not tracked per-token.
func (eng *Engine) appendFunTransferEvent(ctx context.Context, env Envelope, ev decoder.FunTransfer) error {
	kind := EventTransfer
	switch decoder.ClassifyAction(ev.From, ev.To) {
	case decoder.ActionMint:
		kind = EventMint
	case decoder.ActionBurn:
		kind = EventBurn
	}
	amount := ev.Value.Decimal()
	return eng.store.AppendTokenEvent(ctx, TokenEvent{
		EventID:         env.eventID(),
		ContractAddress: env.ContractAddress,
		ChainID:         env.ChainID,
		Kind:            kind,
		BlockTimestamp:  env.BlockTimestamp,
		From:            nonZeroHex(ev.From),
		To:              nonZeroHex(ev.To),
		Amount:          &amount,
	})
}

func (eng *Engine) appendSEC1400TransferEvent(ctx context.Context, env Envelope, ev decoder.SEC1400Transfer) error {
	amount := ev.Value.Decimal()
	return eng.store.AppendTokenEvent(ctx, TokenEvent{
		EventID:         env.eventID(),
		ContractAddress: env.ContractAddress,
		ChainID:         env.ChainID,
		Kind:            EventTransfer,
		BlockTimestamp:  env.BlockTimestamp,
		From:            nonZeroHex(ev.From),
		To:              nonZeroHex(ev.To),
		Amount:          &amount,
	})
}

func nonZeroHex(f felt.Felt) string {
	if f.IsZero() {
		return ""
	}
	return f.Hex()
}

// CleanBlock implements spec §4.4's external block-clean operation,
// delegating the chunking/retry policy to the store (which may
// collapse it into one statement for relational backends).
func (eng *Engine) CleanBlock(ctx context.Context, blockNumber int64) error {
	return eng.store.CleanBlock(ctx, blockNumber)
}
