package adapter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cairo-marketplace/indexer/internal/checkpoint"
)

type fakeChain struct {
	latest    uint64
	pendingTS int64
}

func (f *fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) { return f.latest, nil }
func (f *fakeChain) PendingBlockTimestamp(ctx context.Context) (int64, error) {
	return f.pendingTS, nil
}

type fakeProcessor struct {
	ranges []rangeCall
	failOn uint64 // fail any range whose `from` equals this value
}

type rangeCall struct {
	from, end uint64
	pending   bool
}

func (p *fakeProcessor) ProcessRange(ctx context.Context, from, end uint64, pending bool) error {
	p.ranges = append(p.ranges, rangeCall{from, end, pending})
	if p.failOn != 0 && from == p.failOn {
		return assertError
	}
	return nil
}

var assertError = &stubErr{"boom"}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }

func newCkpt(t *testing.T) *checkpoint.Checkpointer {
	t.Helper()
	return checkpoint.New(filepath.Join(t.TempDir(), "checkpoint.txt"))
}

func TestTick_AdvancesByBlockRange(t *testing.T) {
	chain := &fakeChain{latest: 1000, pendingTS: 0}
	proc := &fakeProcessor{}
	r := New(Config{PollInterval: time.Millisecond, BlockRange: 100, FromBlock: 0}, chain, proc, newCkpt(t), zap.NewNop())

	next, err := r.tick(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), next)
	require.Len(t, proc.ranges, 1)
	assert.Equal(t, rangeCall{0, 100, false}, proc.ranges[0])

	saved, ok, err := r.ckpt.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(101), saved)
}

func TestTick_PendingBlockReindexWhenTimestampUnchanged(t *testing.T) {
	chain := &fakeChain{latest: 1000, pendingTS: 555}
	proc := &fakeProcessor{}
	r := New(Config{PollInterval: time.Millisecond, BlockRange: 100, FromBlock: 50}, chain, proc, newCkpt(t), zap.NewNop())
	r.lastPendingTimestamp = 555

	next, err := r.tick(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), next)
	require.Len(t, proc.ranges, 1)
	assert.True(t, proc.ranges[0].pending)
}

func TestTick_SkipsFailingRangeAndAdvancesAnyway(t *testing.T) {
	chain := &fakeChain{latest: 1000, pendingTS: 0}
	proc := &fakeProcessor{failOn: 200}
	r := New(Config{PollInterval: time.Millisecond, BlockRange: 100, FromBlock: 200}, chain, proc, newCkpt(t), zap.NewNop())

	next, err := r.tick(context.Background(), 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(301), next)
}

func TestTick_ClampsToBlockBound(t *testing.T) {
	chain := &fakeChain{latest: 1000, pendingTS: 0}
	proc := &fakeProcessor{}
	r := New(Config{PollInterval: time.Millisecond, BlockRange: 1000, FromBlock: 0, ToBlock: 50}, chain, proc, newCkpt(t), zap.NewNop())

	next, err := r.tick(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(51), next)
	require.Len(t, proc.ranges, 1)
	assert.Equal(t, uint64(50), proc.ranges[0].end)
}

