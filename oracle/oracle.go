// Package oracle models the boundary to the out-of-scope price feed: the
// protocol itself never fetches prices over HTTP or watches an on-chain
// oracle contract. Instead it defines the SourceCollector interface an
// external collaborator implements, and the aggregation/validation
// predicate the orchestrator applies to whatever that collaborator returns.
package oracle

import (
	"strconv"

	"zkusd/fixedpoint"
	"zkusd/protoerrors"
)

// SourceQuote is one price source's reading.
type SourceQuote struct {
	SourceID   string
	PriceCents uint64
	AsOfBlock  uint64
}

// SourceCollector is the external collaborator interface: something that
// can produce the current set of price quotes. No implementation of this
// interface lives in this module.
type SourceCollector interface {
	Collect() ([]SourceQuote, error)
}

// State is the protocol's current aggregated price, carried forward block
// to block until a new SubmitPrice succeeds.
type State struct {
	PriceCents  uint64
	SourceCount uint64
	AsOfBlock   uint64
}

// Aggregate validates a fresh set of quotes against the previous accepted
// state and the governance-controlled thresholds, returning the new state
// on success. It enforces:
//   - at least MinPriceSources quotes
//   - every quote no older than PriceStalenessThreshold blocks before now
//   - the resulting median within MaxPriceDeviation bps of the previous
//     accepted price (skipped when there is no previous price)
func Aggregate(quotes []SourceQuote, now, minSources, stalenessThreshold, maxDeviationBps uint64, prev State) (State, error) {
	if uint64(len(quotes)) < minSources {
		return State{}, protoerrors.InsufficientSources().WithDetail(
			"got " + strconv.Itoa(len(quotes)) + ", need " + strconv.FormatUint(minSources, 10))
	}

	prices := make([]uint64, 0, len(quotes))
	var newestBlock uint64
	for _, q := range quotes {
		if now >= q.AsOfBlock && now-q.AsOfBlock > stalenessThreshold {
			return State{}, protoerrors.StalePrice().WithDetail(q.SourceID)
		}
		prices = append(prices, q.PriceCents)
		if q.AsOfBlock > newestBlock {
			newestBlock = q.AsOfBlock
		}
	}

	median := fixedpoint.Median(prices)
	if prev.PriceCents != 0 && !fixedpoint.WithinDeviationBps(prev.PriceCents, median, maxDeviationBps) {
		return State{}, protoerrors.DeviationTooHigh()
	}

	return State{PriceCents: median, SourceCount: uint64(len(quotes)), AsOfBlock: newestBlock}, nil
}
