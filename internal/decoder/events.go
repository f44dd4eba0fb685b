package decoder

import "github.com/cairo-marketplace/indexer/internal/felt"

// Compliance marks whether a decoded event used the canonical wire
// layout or a known non-canonical variant (spec GLOSSARY: compliance
// tag). It travels onto the TokenEvent row for operational diagnostics.
type Compliance string

const (
	Canonical    Compliance = "CANONICAL"
	NonCanonical Compliance = "NON_CANONICAL"
)

// Action classifies a transfer by its endpoints (spec §4.3).
type Action string

const (
	ActionMint     Action = "MINT"
	ActionBurn     Action = "BURN"
	ActionTransfer Action = "TRANSFER"
)

// ClassifyAction implements spec §4.3's mint/burn/transfer rule.
func ClassifyAction(from, to felt.Felt) Action {
	switch {
	case from.IsZero():
		return ActionMint
	case to.IsZero():
		return ActionBurn
	default:
		return ActionTransfer
	}
}

// FunTransfer is ERC20-style Transfer(from, to, value).
type FunTransfer struct {
	From, To felt.Felt
	Value    felt.U256
}

// FunApproval is ERC20-style Approval(owner, spender, value).
type FunApproval struct {
	Owner, Spender felt.Felt
	Value          felt.U256
}

// NFT721Transfer is ERC721-style Transfer(from, to, token_id).
type NFT721Transfer struct {
	From, To felt.Felt
	TokenID  felt.U256
}

// NFT721Approval is ERC721-style Approval(owner, approved, token_id).
type NFT721Approval struct {
	Owner, Approved felt.Felt
	TokenID         felt.U256
}

// ApprovalForAll is shared between NFT721 and NFT1155.
type ApprovalForAll struct {
	Owner, Operator felt.Felt
	Approved        bool
}

// NFT1155TransferSingle is ERC1155-style TransferSingle.
type NFT1155TransferSingle struct {
	Operator, From, To felt.Felt
	ID                 felt.U256
	Value              felt.U256
}

// NFT1155TransferBatch is ERC1155-style TransferBatch, with validated
// equal-length ids/values arrays.
type NFT1155TransferBatch struct {
	Operator, From, To felt.Felt
	IDs                []felt.U256
	Values             []felt.U256
}

// NFT1155URI carries a decoded metadata URI for a specific token id.
type NFT1155URI struct {
	Value string
	ID    felt.U256
}

// SEC1400Transfer is the partitioned-security Transfer variant, always
// tagged NonCanonical per spec §4.3's table.
type SEC1400Transfer struct {
	From, To felt.Felt
	Value    felt.U256
}

// Event is the decoded-event sum type. Exactly one field is non-nil.
type Event struct {
	FunTransfer           *FunTransfer
	FunApproval           *FunApproval
	NFT721Transfer        *NFT721Transfer
	NFT721Approval        *NFT721Approval
	ApprovalForAll        *ApprovalForAll
	NFT1155TransferSingle *NFT1155TransferSingle
	NFT1155TransferBatch  *NFT1155TransferBatch
	NFT1155URI            *NFT1155URI
	SEC1400Transfer       *SEC1400Transfer
}
