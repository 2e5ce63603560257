package position

import (
	"sort"

	"zkusd/protoerrors"
	"zkusd/zkcrypto"
)

// DustSats is the minimum collateral amount a position may be opened with
//.
const DustSats = 546

// Manager indexes positions by id (authoritative) and by owner (secondary).
type Manager struct {
	byID    map[zkcrypto.Hash]*Position
	byOwner map[[33]byte][]zkcrypto.Hash
}

// NewManager constructs an empty position manager.
func NewManager() *Manager {
	return &Manager{
		byID:    make(map[zkcrypto.Hash]*Position),
		byOwner: make(map[[33]byte][]zkcrypto.Hash),
	}
}

// Get returns the position with the given id, or NotFound.
func (m *Manager) Get(id zkcrypto.Hash) (*Position, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, protoerrors.NotFound("position")
	}
	return p, nil
}

// ByOwner returns every position id owned by owner.
func (m *Manager) ByOwner(owner zkcrypto.PublicKey) []zkcrypto.Hash {
	key := owner.Compressed()
	ids := m.byOwner[key]
	out := make([]zkcrypto.Hash, len(ids))
	copy(out, ids)
	return out
}

// insert registers a newly created position in both indices.
func (m *Manager) insert(p *Position) {
	m.byID[p.ID] = p
	key := p.Owner.Compressed()
	m.byOwner[key] = append(m.byOwner[key], p.ID)
}

// put persists a mutated position (already present in byID).
func (m *Manager) put(p *Position) {
	m.byID[p.ID] = p
}

// All returns every position currently tracked, in an unspecified order.
func (m *Manager) All() []*Position {
	out := make([]*Position, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out
}

// TotalDebtCents sums every non-terminal position's outstanding debt, the
// system-wide liability figure the recovery-mode TCR predicate is defined
// against, distinct from the debt-token ledger's circulating
// supply since the borrowing fee leaves debt outstanding with no token ever
// minted for it.
func (m *Manager) TotalDebtCents() uint64 {
	var total uint64
	for _, p := range m.byID {
		if p.IsTerminal() {
			continue
		}
		total += p.DebtCents
	}
	return total
}

// LiquidatableCandidate pairs a position with its ratio at a given price,
// used for deterministic liquidation/redemption ordering.
type LiquidatableCandidate struct {
	ID    zkcrypto.Hash
	Ratio uint64
}

// GetLiquidatable returns non-terminal, debt>0 positions with ratio strictly
// below minRatioPct, ordered ascending by ratio and tie-broken by id
// lexicographically.
func (m *Manager) GetLiquidatable(priceCents, minRatioPct uint64, ratioFn func(coll, price, debt uint64) (uint64, error)) ([]LiquidatableCandidate, error) {
	var out []LiquidatableCandidate
	for _, p := range m.byID {
		if p.IsTerminal() || p.DebtCents == 0 {
			continue
		}
		r, err := ratioFn(p.CollateralSats, priceCents, p.DebtCents)
		if err != nil {
			return nil, err
		}
		if r < minRatioPct {
			out = append(out, LiquidatableCandidate{ID: p.ID, Ratio: r})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ratio != out[j].Ratio {
			return out[i].Ratio < out[j].Ratio
		}
		return lessHash(out[i].ID, out[j].ID)
	})
	return out, nil
}

// Clone returns a deep copy of the manager, suitable for the orchestrator's
// shadow-copy-then-commit execution model.
func (m *Manager) Clone() *Manager {
	out := &Manager{
		byID:    make(map[zkcrypto.Hash]*Position, len(m.byID)),
		byOwner: make(map[[33]byte][]zkcrypto.Hash, len(m.byOwner)),
	}
	for id, p := range m.byID {
		out.byID[id] = p.Clone()
	}
	for owner, ids := range m.byOwner {
		cp := make([]zkcrypto.Hash, len(ids))
		copy(cp, ids)
		out.byOwner[owner] = cp
	}
	return out
}

func lessHash(a, b zkcrypto.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
