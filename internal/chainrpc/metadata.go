package chainrpc

import (
	"context"
	"errors"

	"github.com/cairo-marketplace/indexer/internal/felt"
)

// ContractName and ContractSymbol implement projection.MetadataFetcher
// by probing name()/symbol() (falling back to the snake_case spelling,
// same pattern as the classifier's ownerOf/owner_of probe) and decoding
// the felt response as a Cairo short-string. Supplemented feature: the
// third probe step from SPEC_FULL §5 item 4, grounded on
// ark-indexer-transactions/src/services/contract/manager.rs's use of
// parse_cairo_string against name()/symbol() results.
func (c *Client) ContractName(ctx context.Context, address string) (string, error) {
	return c.probeShortString(ctx, address, "name", "name")
}

func (c *Client) ContractSymbol(ctx context.Context, address string) (string, error) {
	return c.probeShortString(ctx, address, "symbol", "symbol")
}

// TokenURI probes tokenURI/token_uri and decodes the result as a Cairo
// ByteArray (long-string) value rather than a single short string,
// since metadata URIs routinely exceed 31 bytes.
func (c *Client) TokenURI(ctx context.Context, address string, tokenIDDec string) (string, error) {
	id, err := felt.FromDecimal(tokenIDDec)
	if err != nil {
		return "", err
	}

	for _, selector := range []string{"tokenURI", "token_uri"} {
		out, err := c.Call(ctx, address, selector, []felt.Felt{id, felt.Zero}, BlockPending)
		if err == nil {
			return felt.DecodeLongString(out)
		}
		var cerr *CallError
		if errors.As(err, &cerr) && cerr.Kind == KindEntrypointNotFound {
			continue
		}
		return "", err
	}
	return "", ErrNoEntrypoint
}

func (c *Client) probeShortString(ctx context.Context, address, camel, snake string) (string, error) {
	for _, selector := range []string{camel, snake} {
		out, err := c.Call(ctx, address, selector, nil, BlockPending)
		if err == nil {
			if len(out) == 0 {
				return "", nil
			}
			return felt.DecodeShortString(out[0])
		}
		var cerr *CallError
		if errors.As(err, &cerr) && cerr.Kind == KindEntrypointNotFound {
			continue
		}
		return "", err
	}
	return "", ErrNoEntrypoint
}
