// Package params exposes the owner-gated setters for the economic parameters
// consumed by the pricing functions. Every setter authorises the caller
// against the configured contract owner and validates the new value so that a
// later pricing call can never divide by zero.
package params

import (
	"math/big"

	"distancia/core/types"
)

// State is the ledger access the parameter engine needs.
type State interface {
	Params() (*types.Params, error)
	SetParams(*types.Params) error
	Owner() (string, error)
	TokenContractOwner() (string, error)
	SetTokenContractOwner(string) error
}

// Engine wraps the parameter store with authorisation and validation.
type Engine struct {
	st State
}

// NewEngine constructs a parameter engine over the supplied state.
func NewEngine(st State) *Engine {
	return &Engine{st: st}
}

func (e *Engine) authorize(caller string) error {
	owner, err := e.st.Owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) update(caller string, mutate func(*types.Params)) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	current, err := e.st.Params()
	if err != nil {
		return err
	}
	next := current.Clone()
	mutate(next)
	if err := next.Validate(); err != nil {
		return err
	}
	return e.st.SetParams(next)
}

// SetDistanciaPrice replaces the reward-to-base exchange price.
func (e *Engine) SetDistanciaPrice(caller string, value *big.Int) error {
	return e.update(caller, func(p *types.Params) { p.DistanciaPrice = cloneAmount(value) })
}

// SetMinimumAdValue replaces the minimum deposit accepted for an ad upload.
func (e *Engine) SetMinimumAdValue(caller string, value *big.Int) error {
	return e.update(caller, func(p *types.Params) { p.MinimumAdValue = cloneAmount(value) })
}

// SetPercentageAdWatchValue replaces the per-watch distribution percentage.
func (e *Engine) SetPercentageAdWatchValue(caller string, value *big.Int) error {
	return e.update(caller, func(p *types.Params) { p.PercentageAdWatchValue = cloneAmount(value) })
}

// SetPercentageCommissionValue replaces the platform commission percentage.
func (e *Engine) SetPercentageCommissionValue(caller string, value *big.Int) error {
	return e.update(caller, func(p *types.Params) { p.PercentageCommissionValue = cloneAmount(value) })
}

// SetPercentageMilestoneCompletionValue replaces the milestone interest
// percentage.
func (e *Engine) SetPercentageMilestoneCompletionValue(caller string, value *big.Int) error {
	return e.update(caller, func(p *types.Params) { p.PercentageMilestoneCompletionValue = cloneAmount(value) })
}

// Params returns the current parameter set.
func (e *Engine) Params() (*types.Params, error) {
	return e.st.Params()
}

// DistanciaPrice returns the current price parameter.
func (e *Engine) DistanciaPrice() (*big.Int, error) {
	p, err := e.st.Params()
	if err != nil {
		return nil, err
	}
	return p.DistanciaPrice, nil
}

// TokenContractOwner returns the cached external token contract owner.
func (e *Engine) TokenContractOwner() (string, error) {
	return e.st.TokenContractOwner()
}

// ApplyTokenOwner caches the owner delivered by a token-service callback.
func (e *Engine) ApplyTokenOwner(owner string) error {
	return e.st.SetTokenContractOwner(owner)
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
