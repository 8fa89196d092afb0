// Package milestones implements the owner-gated milestone registry.
package milestones

import (
	"errors"
	"math/big"
	"strings"

	"distancia/core/events"
	"distancia/core/ledger"
	"distancia/core/types"
)

// State is the ledger access the registry needs.
type State interface {
	MilestoneByKey(key string) (*types.Milestone, bool, error)
	InsertMilestone(m *types.Milestone) (uint64, error)
	ListMilestones() ([]*types.Milestone, error)
	Owner() (string, error)
}

// Engine creates and exposes milestones.
type Engine struct {
	st      State
	emitter events.Emitter
}

// NewEngine constructs a registry over the supplied state.
func NewEngine(st State) *Engine {
	return &Engine{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// CreateMilestone registers a new milestone. Only the contract owner may
// create milestones; the value is fixed at creation.
func (e *Engine) CreateMilestone(caller, key string, value *big.Int) (*types.Milestone, error) {
	owner, err := e.st.Owner()
	if err != nil {
		return nil, err
	}
	if caller != owner {
		return nil, ErrNotAuthorized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}
	if value == nil || value.Sign() <= 0 {
		return nil, ErrValueRequired
	}
	m := &types.Milestone{Key: key, Value: new(big.Int).Set(value)}
	if _, err := e.st.InsertMilestone(m); err != nil {
		if errors.Is(err, ledger.ErrDuplicateKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	e.emitter.Emit(events.MilestoneCreated{ID: m.ID, Key: m.Key, Value: m.Value})
	return m.Clone(), nil
}

// GetMilestone returns the milestone stored under the key, if any.
func (e *Engine) GetMilestone(key string) (*types.Milestone, bool, error) {
	return e.st.MilestoneByKey(strings.TrimSpace(key))
}

// ListMilestones returns all milestones in insertion order.
func (e *Engine) ListMilestones() ([]*types.Milestone, error) {
	return e.st.ListMilestones()
}
