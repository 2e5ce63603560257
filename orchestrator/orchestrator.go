// Package orchestrator exposes the protocol's single entrypoint: every
// externally triggered state change is one call into Engine, which stages
// the change against a shadow copy of the world, validates and mutates only
// that copy, and swaps it in as the live state only once every subsystem
// involved has succeeded. No subsystem is ever mutated
// directly by a caller outside this package.
package orchestrator

import (
	"sync"
	"time"

	"zkusd/config"
	"zkusd/liquidation"
	"zkusd/observability"
	"zkusd/oracle"
	"zkusd/paramstore"
	"zkusd/protocolevents"
	"zkusd/proof"
	"zkusd/ratio"
	"zkusd/recovery"
	"zkusd/redemption"
	"zkusd/snapshot"
	"zkusd/zkcrypto"

	"log/slog"
)

// Engine is the protocol's single cooperative-execution entrypoint. All of
// its methods take the same mutex: concurrent callers are serialized into a
// single logical thread of control rather than racing against each other's
// shadow copies.
type Engine struct {
	mu  sync.Mutex
	log *slog.Logger

	world *snapshot.World

	fee      *redemption.FeeModel
	fallback liquidation.FallbackPolicy
	verifier proof.Verifier

	price       oracle.State
	inRecovery  bool
}

// New returns an orchestrator over a freshly initialized world seeded with
// the protocol's default bootstrap configuration. logger may be nil, in
// which case logs are discarded.
func New(logger *slog.Logger) *Engine {
	e, err := NewFromConfig(logger, config.Default())
	if err != nil {
		// config.Default() always validates; a failure here means the
		// default bootstrap itself is broken, which is a programmer error.
		panic(err)
	}
	return e
}

// NewFromConfig returns an orchestrator whose parameter store and redemption
// fee model are seeded from b instead of the bare defaults, letting a caller
// adjust the protocol constants and initial parameter catalogue before the
// first operation runs.
func NewFromConfig(logger *slog.Logger, b config.Bootstrap) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	store, err := b.StoreSeed()
	if err != nil {
		return nil, err
	}
	w := snapshot.New()
	w.Params = store
	return &Engine{
		log:      logger,
		world:    w,
		fee:      redemption.NewFeeModel(store.Snapshot().Get(paramstore.RedemptionFeeFloor), b.Protocol.RedemptionHalfLifeBlocks),
		fallback: liquidation.StrictRevertPolicy{},
		verifier: proof.NoopVerifier{},
	}, nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// SetFallbackPolicy overrides the default strict-revert liquidation
// fallback, e.g. to a proportional-redistribution policy.
func (e *Engine) SetFallbackPolicy(p liquidation.FallbackPolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = p
}

// SetVerifier overrides the default no-op proof verifier.
func (e *Engine) SetVerifier(v proof.Verifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.verifier = v
}

// SetGuardian designates the parameter-change-cancellation identity.
func (e *Engine) SetGuardian(pub [33]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world.Params.SetGuardian(pub)
}

// Pause marks a module (modulepause.Minting, .Redemption, .Liquidation, or
// .StabilityPool) as paused; matching operations are rejected with a
// Paused error until Unpause is called.
func (e *Engine) Pause(module string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world.Pauses.Pause(module)
}

// Unpause clears a module's paused state.
func (e *Engine) Unpause(module string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world.Pauses.Unpause(module)
}

// PriceCents returns the current accepted price.
func (e *Engine) PriceCents() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.price.PriceCents
}

// InRecoveryMode reports whether the system is currently in recovery mode,
// as of the last price update or mutation.
func (e *Engine) InRecoveryMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inRecovery
}

// World returns a deep copy of the live world, for read-only inspection
// (e.g. an RPC query layer) without risking a caller holding a reference
// into live state.
func (e *Engine) World() *snapshot.World {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Clone()
}

// EventLog returns every event emitted so far, in emission order.
func (e *Engine) EventLog() []protocolevents.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Events.All()
}

// instrument wraps a staged call with the standard observe/log/metrics
// envelope every public method below shares, mirroring native/lending's
// single chokepoint for error handling and metric emission around each
// mutating entrypoint.
func (e *Engine) instrument(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.Operations().Observe(operation, err, time.Since(start))
	if err != nil {
		e.log.Warn("operation rejected", "operation", operation, "error", err)
		return err
	}
	e.log.Info("operation applied", "operation", operation)
	return nil
}

// refreshRecoveryMode recomputes recovery-mode status against w and emits a
// transition event into w's log if it changed since the last call.
func (e *Engine) refreshRecoveryMode(w *snapshot.World) error {
	params := w.Params.Snapshot()
	was := e.inRecovery
	now, err := recovery.InRecoveryMode(w.TotalCollateralSats(), e.price.PriceCents, w.TotalDebtCents(), params)
	if err != nil {
		return err
	}
	ccr := params.Get(paramstore.CriticalCollateralRatio)
	if now && !was {
		tcr, _ := tcrOrZero(w, e.price.PriceCents)
		w.Events.Append(protocolevents.RecoveryModeEntered{TCR: tcr, CCR: ccr})
	}
	if !now && was {
		tcr, _ := tcrOrZero(w, e.price.PriceCents)
		w.Events.Append(protocolevents.RecoveryModeExited{TCR: tcr, CCR: ccr})
	}
	e.inRecovery = now
	return nil
}

// tcrOrZero returns the system TCR, or zero when there is no outstanding
// debt (an undefined ratio that can never trip recovery mode).
func tcrOrZero(w *snapshot.World, priceCents uint64) (uint64, error) {
	if w.TotalDebtCents() == 0 {
		return 0, nil
	}
	return ratio.Ratio(w.TotalCollateralSats(), priceCents, w.TotalDebtCents())
}

// commit swaps w in as the live world and refreshes the observability
// protocol gauges. Called only after every step of a staged operation has
// succeeded.
func (e *Engine) commit(w *snapshot.World) {
	e.world = w
	tcr, _ := tcrOrZero(w, e.price.PriceCents)
	observability.Protocol().Observe(e.inRecovery, tcr, w.TotalCollateralSats(), w.TotalDebtCents())
}

func addr(pub zkcrypto.PublicKey) string { return pub.Address().String() }

func idHex(id zkcrypto.Hash) string { return id.HexString() }
