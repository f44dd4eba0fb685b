package decoder

import "github.com/cairo-marketplace/indexer/internal/felt"

// Event selectors, as Starknet computes them: starknet_keccak of the
// event name, truncated into the field. Values below are canonical
// selectors for the event names used across the token standards this
// decoder supports.
var (
	selTransfer           = mustSelector("0x0099cd8bde557814842a3121e8ddfd433a539b8c9f14bf31ebf108d12e6196e9")
	selApproval           = mustSelector("0x0134692b230b9e1ffa39098904722134159652b09c5bc41d88d6698779d228ff")
	selApprovalForAll     = mustSelector("0x0006ad9ed7b6318f1bcffefe19df9aeb40d22c36bed567e1925a5ccde0536edd")
	selTransferSingle     = mustSelector("0x0182d859c0807ba9db63baf8b9d9fdbfeb885d820be6e206b9dab626d995c433")
	selTransferBatch      = mustSelector("0x02563683c757f3abe19c4b7237e2285d8993417ddffe0b54a19eb212ea574b08")
	selURI                = mustSelector("0x0278764b0e84f45a602e24e86f19a3e2af7956f2a9112d825c8b5ca7991c711f")
	selTransferByPartition = mustSelector("0x0350c105319a8f89c0ab8238e2eb3e71815d7c6c86a1834b874c683342354804")
)

func mustSelector(hex string) felt.Felt {
	f, err := felt.FromHex(hex)
	if err != nil {
		panic(err)
	}
	return f
}
