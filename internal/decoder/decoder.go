// Package decoder implements the event decoder (spec component C3): for
// a classified contract, parse a raw log's (keys, data) into a typed
// event variant carrying a compliance tag.
package decoder

import (
	"errors"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

// ErrUnknownLayout is returned when keys/data do not match any known
// layout for the contract's classified standard (spec §7: DecodeFormat).
var ErrUnknownLayout = errors.New("decoder: unrecognized event shape")

// ErrBatchLengthMismatch is raised when a TransferBatch's ids/values
// arrays carry different lengths (spec §4.3).
var ErrBatchLengthMismatch = errors.New("decoder: transfer batch ids/values length mismatch")

// Log is the raw event the chain emits: an ordered list of indexed Felts
// (keys[0] is the selector) and an ordered list of non-indexed Felts.
type Log struct {
	FromAddress string
	Keys        []felt.Felt
	Data        []felt.Felt
}

// Decode dispatches on standard and selector per the table in spec
// §4.3, returning the typed event and its compliance tag.
func Decode(standard classifier.Standard, log Log) (Event, Compliance, error) {
	if len(log.Keys) == 0 {
		return Event{}, "", ErrUnknownLayout
	}
	selector := log.Keys[0]

	switch standard {
	case classifier.FUN:
		return decodeFun(selector, log)
	case classifier.NFT721:
		return decodeNFT721(selector, log)
	case classifier.NFT1155:
		return decodeNFT1155(selector, log)
	case classifier.SEC1400:
		return decodeSEC1400(selector, log)
	default:
		return Event{}, "", ErrUnknownLayout
	}
}

func decodeFun(selector felt.Felt, log Log) (Event, Compliance, error) {
	switch {
	case selector.Equal(selTransfer):
		switch {
		case len(log.Keys) == 3 && len(log.Data) == 2:
			return Event{FunTransfer: &FunTransfer{
				From: log.Keys[1], To: log.Keys[2],
				Value: felt.U256FromWords(log.Data[0], log.Data[1]),
			}}, Canonical, nil
		case len(log.Keys) == 1 && len(log.Data) == 4:
			return Event{FunTransfer: &FunTransfer{
				From: log.Data[0], To: log.Data[1],
				Value: felt.U256FromWords(log.Data[2], log.Data[3]),
			}}, NonCanonical, nil
		}
	case selector.Equal(selApproval):
		if len(log.Keys) == 3 && len(log.Data) == 2 {
			return Event{FunApproval: &FunApproval{
				Owner: log.Keys[1], Spender: log.Keys[2],
				Value: felt.U256FromWords(log.Data[0], log.Data[1]),
			}}, Canonical, nil
		}
	}
	return Event{}, "", fmt.Errorf("%w: FUN selector=%s keys=%d data=%d", ErrUnknownLayout, selector, len(log.Keys), len(log.Data))
}

func decodeNFT721(selector felt.Felt, log Log) (Event, Compliance, error) {
	switch {
	case selector.Equal(selTransfer):
		switch {
		case len(log.Keys) == 5:
			return Event{NFT721Transfer: &NFT721Transfer{
				From: log.Keys[1], To: log.Keys[2],
				TokenID: felt.U256FromWords(log.Keys[3], log.Keys[4]),
			}}, Canonical, nil
		case len(log.Keys) == 1 && len(log.Data) == 4:
			return Event{NFT721Transfer: &NFT721Transfer{
				From: log.Data[0], To: log.Data[1],
				TokenID: felt.U256FromWords(log.Data[2], log.Data[3]),
			}}, NonCanonical, nil
		}
	case selector.Equal(selApproval):
		if len(log.Keys) == 5 {
			return Event{NFT721Approval: &NFT721Approval{
				Owner: log.Keys[1], Approved: log.Keys[2],
				TokenID: felt.U256FromWords(log.Keys[3], log.Keys[4]),
			}}, Canonical, nil
		}
	case selector.Equal(selApprovalForAll):
		if len(log.Keys) == 3 && len(log.Data) == 1 {
			approved, err := decodeBool(log.Data[0])
			if err != nil {
				return Event{}, "", err
			}
			return Event{ApprovalForAll: &ApprovalForAll{
				Owner: log.Keys[1], Operator: log.Keys[2], Approved: approved,
			}}, Canonical, nil
		}
	}
	return Event{}, "", fmt.Errorf("%w: NFT721 selector=%s keys=%d data=%d", ErrUnknownLayout, selector, len(log.Keys), len(log.Data))
}

func decodeNFT1155(selector felt.Felt, log Log) (Event, Compliance, error) {
	switch {
	case selector.Equal(selTransferSingle):
		switch {
		case len(log.Keys) == 4 && len(log.Data) == 4:
			return Event{NFT1155TransferSingle: &NFT1155TransferSingle{
				Operator: log.Keys[1], From: log.Keys[2], To: log.Keys[3],
				ID:    felt.U256FromWords(log.Data[0], log.Data[1]),
				Value: felt.U256FromWords(log.Data[2], log.Data[3]),
			}}, Canonical, nil
		case len(log.Keys) == 1 && len(log.Data) == 7:
			return Event{NFT1155TransferSingle: &NFT1155TransferSingle{
				Operator: log.Data[0], From: log.Data[1], To: log.Data[2],
				ID:    felt.U256FromWords(log.Data[3], log.Data[4]),
				Value: felt.U256FromWords(log.Data[5], log.Data[6]),
			}}, NonCanonical, nil
		}
	case selector.Equal(selTransferBatch):
		if len(log.Keys) == 4 && len(log.Data) >= 4 {
			return decodeTransferBatch(log)
		}
	case selector.Equal(selApprovalForAll):
		if len(log.Keys) == 3 && len(log.Data) == 1 {
			approved, err := decodeBool(log.Data[0])
			if err != nil {
				return Event{}, "", err
			}
			return Event{ApprovalForAll: &ApprovalForAll{
				Owner: log.Keys[1], Operator: log.Keys[2], Approved: approved,
			}}, Canonical, nil
		}
	case selector.Equal(selURI):
		if len(log.Keys) == 3 && len(log.Data) > 3 {
			return decodeURI(log)
		}
	}
	return Event{}, "", fmt.Errorf("%w: NFT1155 selector=%s keys=%d data=%d", ErrUnknownLayout, selector, len(log.Keys), len(log.Data))
}

// decodeTransferBatch reads the two length-prefixed u256 arrays packed
// back-to-back in data: [len_ids, ids..., len_values, values...], each
// u256 as a (low, high) Felt pair.
func decodeTransferBatch(log Log) (Event, Compliance, error) {
	data := log.Data
	if len(data) < 1 {
		return Event{}, "", ErrUnknownLayout
	}
	idsLen := data[0].Uint64()
	cursor := 1 + int(idsLen)*2
	if cursor+1 > len(data) {
		return Event{}, "", ErrUnknownLayout
	}
	valuesLen := data[cursor].Uint64()
	if idsLen != valuesLen {
		return Event{}, "", ErrBatchLengthMismatch
	}
	valuesStart := cursor + 1
	if valuesStart+int(valuesLen)*2 > len(data) {
		return Event{}, "", ErrUnknownLayout
	}

	ids := make([]felt.U256, idsLen)
	for i := uint64(0); i < idsLen; i++ {
		ids[i] = felt.U256FromWords(data[1+2*i], data[1+2*i+1])
	}
	values := make([]felt.U256, valuesLen)
	for i := uint64(0); i < valuesLen; i++ {
		values[i] = felt.U256FromWords(data[valuesStart+2*int(i)], data[valuesStart+2*int(i)+1])
	}

	return Event{NFT1155TransferBatch: &NFT1155TransferBatch{
		Operator: log.Keys[1], From: log.Keys[2], To: log.Keys[3],
		IDs: ids, Values: values,
	}}, Canonical, nil
}

func decodeURI(log Log) (Event, Compliance, error) {
	// data = [len_elements, ...long-string elements..., id_low, id_high]
	n := int(log.Data[0].Uint64())
	if len(log.Data) < 1+n+2 {
		return Event{}, "", ErrUnknownLayout
	}
	elements := log.Data[:1+n]
	idLow := log.Data[1+n]
	idHigh := log.Data[1+n+1]

	value, err := felt.DecodeLongString(elements)
	if err != nil {
		return Event{}, "", err
	}

	return Event{NFT1155URI: &NFT1155URI{
		Value: value,
		ID:    felt.U256FromWords(idLow, idHigh),
	}}, Canonical, nil
}

func decodeSEC1400(selector felt.Felt, log Log) (Event, Compliance, error) {
	if selector.Equal(selTransfer) || selector.Equal(selTransferByPartition) {
		if len(log.Keys) >= 3 && len(log.Data) >= 2 {
			return Event{SEC1400Transfer: &SEC1400Transfer{
				From: log.Keys[1], To: log.Keys[2],
				Value: felt.U256FromWords(log.Data[0], log.Data[1]),
			}}, NonCanonical, nil
		}
	}
	return Event{}, "", fmt.Errorf("%w: SEC1400 selector=%s keys=%d data=%d", ErrUnknownLayout, selector, len(log.Keys), len(log.Data))
}

// decodeBool implements spec §4.3's boolean decode: 1 → true, 0 →
// false, anything else is a decode failure.
func decodeBool(f felt.Felt) (bool, error) {
	switch {
	case f.Equal(felt.One):
		return true, nil
	case f.IsZero():
		return false, nil
	default:
		return false, fmt.Errorf("%w: non-boolean value %s", ErrUnknownLayout, f)
	}
}
