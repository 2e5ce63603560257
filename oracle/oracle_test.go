package oracle

import "testing"

func TestAggregateMedianAndSourceCount(t *testing.T) {
	quotes := []SourceQuote{
		{SourceID: "a", PriceCents: 10_000_000, AsOfBlock: 100},
		{SourceID: "b", PriceCents: 10_050_000, AsOfBlock: 100},
		{SourceID: "c", PriceCents: 9_950_000, AsOfBlock: 99},
	}
	state, err := Aggregate(quotes, 100, 3, 10, 200, State{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if state.PriceCents != 10_000_000 {
		t.Fatalf("expected median 10_000_000, got %d", state.PriceCents)
	}
	if state.SourceCount != 3 {
		t.Fatalf("expected source count 3, got %d", state.SourceCount)
	}
	if state.AsOfBlock != 100 {
		t.Fatalf("expected as_of_block 100, got %d", state.AsOfBlock)
	}
}

func TestAggregateRejectsInsufficientSources(t *testing.T) {
	quotes := []SourceQuote{{SourceID: "a", PriceCents: 10_000_000, AsOfBlock: 100}}
	if _, err := Aggregate(quotes, 100, 3, 10, 200, State{}); err == nil {
		t.Fatalf("expected rejection for fewer than MinPriceSources quotes")
	}
}

func TestAggregateRejectsStaleQuote(t *testing.T) {
	quotes := []SourceQuote{
		{SourceID: "a", PriceCents: 10_000_000, AsOfBlock: 50},
		{SourceID: "b", PriceCents: 10_000_000, AsOfBlock: 100},
		{SourceID: "c", PriceCents: 10_000_000, AsOfBlock: 100},
	}
	if _, err := Aggregate(quotes, 100, 3, 10, 200, State{}); err == nil {
		t.Fatalf("expected rejection for a quote older than the staleness threshold")
	}
}

func TestAggregateRejectsExcessiveDeviation(t *testing.T) {
	quotes := []SourceQuote{
		{SourceID: "a", PriceCents: 20_000_000, AsOfBlock: 100},
		{SourceID: "b", PriceCents: 20_100_000, AsOfBlock: 100},
		{SourceID: "c", PriceCents: 19_900_000, AsOfBlock: 100},
	}
	prev := State{PriceCents: 10_000_000}
	if _, err := Aggregate(quotes, 100, 3, 10, 200, prev); err == nil {
		t.Fatalf("expected rejection when the new median deviates beyond max_deviation_bps from the previous price")
	}
}

func TestAggregateAllowsFirstPriceRegardlessOfDeviation(t *testing.T) {
	quotes := []SourceQuote{
		{SourceID: "a", PriceCents: 20_000_000, AsOfBlock: 100},
		{SourceID: "b", PriceCents: 20_100_000, AsOfBlock: 100},
		{SourceID: "c", PriceCents: 19_900_000, AsOfBlock: 100},
	}
	if _, err := Aggregate(quotes, 100, 3, 10, 200, State{}); err != nil {
		t.Fatalf("expected the first accepted price to skip deviation check: %v", err)
	}
}
