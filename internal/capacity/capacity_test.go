package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	records []Record
}

func (m *memSink) Write(r Record) {
	m.records = append(m.records, r)
}

func TestAccumulator_AggregatesAcrossOperations(t *testing.T) {
	sink := &memSink{}
	acc := NewAccumulator("list_tokens", sink, map[string]string{"contract": "0xC"})

	acc.Add(Envelope{ReadUnits: 1.5, WriteUnits: 0})
	acc.Add(Envelope{ReadUnits: 0.5, WriteUnits: 2})
	acc.Finish(200, 1024)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "list_tokens", rec.OperationName)
	assert.InDelta(t, 2.0, rec.ReadUnits, 1e-9)
	assert.InDelta(t, 2.0, rec.WriteUnits, 1e-9)
	assert.Equal(t, 200, rec.StatusCode)
	assert.Equal(t, 1024, rec.BodySize)
}

func TestAccumulator_NilSinkDoesNotPanic(t *testing.T) {
	acc := NewAccumulator("noop", nil, nil)
	acc.Add(Envelope{ReadUnits: 1})
	assert.NotPanics(t, func() { acc.Finish(200, 0) })
}
