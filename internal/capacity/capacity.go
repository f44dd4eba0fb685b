// Package capacity implements per-operation consumed-capacity
// accounting (spec component C7): a read/write unit envelope per
// storage operation, aggregated per handler invocation and exported as
// Prometheus metrics plus an append-only telemetry record.
package capacity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Envelope carries the read_units/write_units of a data-plane operation
// (spec §4.7); the operation's value is returned separately, not in this
// struct. Cursor is optional and carries an opaque pagination token when
// the operation paginated.
type Envelope struct {
	ReadUnits  float64
	WriteUnits float64
	Cursor     string
}

// Record is an append-only telemetry row (spec §3 Capacity record).
type Record struct {
	OperationName string
	Timestamp     time.Time
	ReadUnits     float64
	WriteUnits    float64
	HTTPParams    map[string]string
	StatusCode    int
	BodySize      int
}

// Sink is a write-only telemetry destination (spec §4.7/§6).
type Sink interface {
	Write(Record)
}

var (
	readUnitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_capacity_read_units_total",
		Help: "Cumulative read capacity units consumed, by operation.",
	}, []string{"operation"})

	writeUnitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_capacity_write_units_total",
		Help: "Cumulative write capacity units consumed, by operation.",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(readUnitsTotal, writeUnitsTotal)
}

// Accumulator collects the envelopes produced during a single handler
// invocation and emits one Record when the invocation completes (spec
// §4.7). Not safe for concurrent use across goroutines; one invocation
// gets its own Accumulator.
type Accumulator struct {
	operation string
	sink      Sink
	params    map[string]string
	read      float64
	write     float64
}

func NewAccumulator(operation string, sink Sink, params map[string]string) *Accumulator {
	return &Accumulator{operation: operation, sink: sink, params: params}
}

// Add folds one operation's envelope into the running totals.
func (a *Accumulator) Add(e Envelope) {
	a.read += e.ReadUnits
	a.write += e.WriteUnits
	readUnitsTotal.WithLabelValues(a.operation).Add(e.ReadUnits)
	writeUnitsTotal.WithLabelValues(a.operation).Add(e.WriteUnits)
}

// Finish writes the aggregated Record to the sink. The core imposes no
// ordering guarantee between concurrent invocations' Finish calls
// (spec §4.7).
func (a *Accumulator) Finish(statusCode, bodySize int) {
	if a.sink == nil {
		return
	}
	a.sink.Write(Record{
		OperationName: a.operation,
		Timestamp:     time.Now(),
		ReadUnits:     a.read,
		WriteUnits:    a.write,
		HTTPParams:    a.params,
		StatusCode:    statusCode,
		BodySize:      bodySize,
	})
}
