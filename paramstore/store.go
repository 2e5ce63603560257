package paramstore

import "zkusd/protoerrors"

// Snapshot is an immutable-by-convention view of the current parameter
// values, threaded through position/liquidation/redemption/recovery so those
// packages never need to import paramstore's mutable Store type directly.
type Snapshot map[Parameter]uint64

// Get returns the value for p, or its catalogue default if unset.
func (s Snapshot) Get(p Parameter) uint64 {
	if v, ok := s[p]; ok {
		return v
	}
	return Defaults()[p]
}

// Store holds the live parameter values plus the delayed-change queue
//. Guardian is the identity permitted to cancel a pending
// change.
type Store struct {
	values   map[Parameter]uint64
	pending  map[uint64]*Change
	nextID   uint64
	guardian [33]byte
	hasGuard bool
}

// NewStore creates a parameter store seeded with the protocol defaults.
func NewStore() *Store {
	s := &Store{
		values:  Defaults(),
		pending: make(map[uint64]*Change),
	}
	return s
}

// NewStoreWithValues creates a parameter store seeded with the given initial
// values, validating each against the catalogue's bounds first. Unset
// parameters fall back to their catalogue default, matching Snapshot.Get's
// behavior. Used by config.Bootstrap to seed a store from a typed bootstrap
// configuration instead of the bare defaults.
func NewStoreWithValues(initial map[Parameter]uint64) (*Store, error) {
	values := Defaults()
	for p, v := range initial {
		if err := Validate(p, v); err != nil {
			return nil, err
		}
		values[p] = v
	}
	return &Store{
		values:  values,
		pending: make(map[uint64]*Change),
	}, nil
}

// SetGuardian designates the identity allowed to cancel pending changes.
func (s *Store) SetGuardian(pub [33]byte) {
	s.guardian = pub
	s.hasGuard = true
}

// Snapshot returns a copy of the current parameter values.
func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Change is a queued parameter mutation awaiting its eta.
type Change struct {
	ID        uint64
	Parameter Parameter
	NewValue  uint64
	Proposer  [33]byte
	EtaBlock  uint64
	GraceEnd  uint64
	Cancelled bool
	Applied   bool
}

// Schedule enqueues a change to take effect at etaBlock and expire at
// etaBlock+graceBlocks if never applied.
func (s *Store) Schedule(p Parameter, newValue uint64, proposer [33]byte, nowBlock, delayBlocks, graceBlocks uint64) (*Change, error) {
	if err := Validate(p, newValue); err != nil {
		return nil, err
	}
	eta := nowBlock + delayBlocks
	change := &Change{
		ID:        s.nextID,
		Parameter: p,
		NewValue:  newValue,
		Proposer:  proposer,
		EtaBlock:  eta,
		GraceEnd:  eta + graceBlocks,
	}
	s.pending[change.ID] = change
	s.nextID++
	return change, nil
}

// Cancel marks a pending change cancelled; only the configured guardian may
// cancel ("Cancellation is signed by a designated guardian
// identity").
func (s *Store) Cancel(id uint64, caller [33]byte, nowBlock uint64) error {
	change, ok := s.pending[id]
	if !ok {
		return protoerrors.NotFound("parameter change")
	}
	if change.Cancelled || change.Applied {
		return protoerrors.InvalidParameter("change already resolved")
	}
	if nowBlock >= change.EtaBlock {
		return protoerrors.InvalidParameter("change is no longer cancellable")
	}
	if !s.hasGuard || caller != s.guardian {
		return protoerrors.Unauthorized()
	}
	change.Cancelled = true
	return nil
}

// Apply commits a pending change to the live parameter set, provided the
// current block is within [eta, eta+grace].
func (s *Store) Apply(id uint64, nowBlock uint64) error {
	change, ok := s.pending[id]
	if !ok {
		return protoerrors.NotFound("parameter change")
	}
	if change.Cancelled {
		return protoerrors.InvalidParameter("change was cancelled")
	}
	if change.Applied {
		return protoerrors.InvalidParameter("change already applied")
	}
	if nowBlock < change.EtaBlock {
		return protoerrors.InvalidParameter("change not yet due")
	}
	if nowBlock > change.GraceEnd {
		return protoerrors.InvalidParameter("change expired")
	}
	s.values[change.Parameter] = change.NewValue
	change.Applied = true
	return nil
}

// ExpireStale deletes queue entries whose grace period has fully elapsed,
// whether or not they were ever applied ("the expired-cleanup
// pass deletes entries whose eta + grace is past").
func (s *Store) ExpireStale(nowBlock uint64) int {
	removed := 0
	for id, change := range s.pending {
		if nowBlock > change.GraceEnd {
			delete(s.pending, id)
			removed++
		}
	}
	return removed
}

// Clone returns a deep copy of the store, for the orchestrator's shadow-
// copy-then-commit execution model.
func (s *Store) Clone() *Store {
	out := &Store{
		values:   make(map[Parameter]uint64, len(s.values)),
		pending:  make(map[uint64]*Change, len(s.pending)),
		nextID:   s.nextID,
		guardian: s.guardian,
		hasGuard: s.hasGuard,
	}
	for k, v := range s.values {
		out.values[k] = v
	}
	for id, c := range s.pending {
		cp := *c
		out.pending[id] = &cp
	}
	return out
}

// Pending returns the currently queued (not yet deleted) changes.
func (s *Store) Pending() []*Change {
	out := make([]*Change, 0, len(s.pending))
	for _, c := range s.pending {
		out = append(out, c)
	}
	return out
}
