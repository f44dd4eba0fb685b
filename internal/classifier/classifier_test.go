package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/chainrpc"
	"github.com/cairo-marketplace/indexer/internal/felt"
)

type stubCall struct {
	selector string
	kind     chainrpc.Kind
	message  string
	ok       bool
}

type stubCaller struct {
	calls   int
	scripts map[string]stubCall
}

func (s *stubCaller) Call(ctx context.Context, address, selector string, calldata []felt.Felt, block chainrpc.BlockRef) ([]felt.Felt, error) {
	s.calls++
	sc, ok := s.scripts[selector]
	if !ok {
		return nil, &chainrpc.CallError{Kind: chainrpc.KindEntrypointNotFound, Message: "Entry point not found"}
	}
	if sc.ok {
		return []felt.Felt{felt.FromUint64(1)}, nil
	}
	return nil, &chainrpc.CallError{Kind: sc.kind, Message: sc.message}
}

func TestClassify_NFT721_OwnerOfSucceeds(t *testing.T) {
	c := New(&stubCaller{scripts: map[string]stubCall{
		"ownerOf": {ok: true},
	}}, zap.NewNop())

	s, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	assert.Equal(t, NFT721, s)
}

func TestClassify_NFT721_TokenNotFoundStillNFT721(t *testing.T) {
	c := New(&stubCaller{scripts: map[string]stubCall{
		"ownerOf": {kind: chainrpc.KindContractError, message: "ERC721: token not found in contract"},
	}}, zap.NewNop())

	s, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	assert.Equal(t, NFT721, s)
}

func TestClassify_NFT1155(t *testing.T) {
	c := New(&stubCaller{scripts: map[string]stubCall{
		"balanceOf": {ok: true},
	}}, zap.NewNop())

	s, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	assert.Equal(t, NFT1155, s)
}

func TestClassify_FUN_InputTooLong(t *testing.T) {
	c := New(&stubCaller{scripts: map[string]stubCall{
		"balanceOf": {kind: chainrpc.KindInputTooLong, message: "Input too long for arguments"},
	}}, zap.NewNop())

	s, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	assert.Equal(t, FUN, s)
}

func TestClassify_OTHER_OnUnrecognizedContractError(t *testing.T) {
	c := New(&stubCaller{scripts: map[string]stubCall{
		"ownerOf":   {kind: chainrpc.KindContractError, message: "boom"},
	}}, zap.NewNop())

	s, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	assert.Equal(t, OTHER, s)
}

// Property P6: classify is deterministic and memoized — a second probe
// of the same address must not re-hit the chain.
func TestProperty_ClassifierMemoization(t *testing.T) {
	stub := &stubCaller{scripts: map[string]stubCall{
		"ownerOf": {ok: true},
	}}
	c := New(stub, zap.NewNop())

	s1, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)
	callsAfterFirst := stub.calls

	s2, err := c.Classify(context.Background(), "0xC")
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, callsAfterFirst, stub.calls, "second classify must not re-probe the chain")
}
