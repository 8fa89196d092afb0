package types

import (
	"errors"
	"fmt"
	"math/big"
)

// PercentageDenominator is the fixed-point denominator for all percentage
// parameters: 1,000,000 represents 100% (0.0001% granularity).
const PercentageDenominator = 1_000_000

var (
	ErrZeroPrice            = errors.New("params: distancia price must be positive")
	ErrZeroWatchPercentage  = errors.New("params: ad watch percentage must be positive")
	ErrPercentageOutOfRange = errors.New("params: percentage exceeds denominator")
)

// Params holds the owner-mutable economic parameters consumed by the pricing
// functions.
type Params struct {
	DistanciaPrice                     *big.Int `json:"distanciaPrice"`
	MinimumAdValue                     *big.Int `json:"minimumAdValue"`
	PercentageAdWatchValue             *big.Int `json:"percentageAdWatchValue"`
	PercentageCommissionValue          *big.Int `json:"percentageCommissionValue"`
	PercentageMilestoneCompletionValue *big.Int `json:"percentageMilestoneCompletionValue"`
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	out := &Params{}
	if p.DistanciaPrice != nil {
		out.DistanciaPrice = new(big.Int).Set(p.DistanciaPrice)
	}
	if p.MinimumAdValue != nil {
		out.MinimumAdValue = new(big.Int).Set(p.MinimumAdValue)
	}
	if p.PercentageAdWatchValue != nil {
		out.PercentageAdWatchValue = new(big.Int).Set(p.PercentageAdWatchValue)
	}
	if p.PercentageCommissionValue != nil {
		out.PercentageCommissionValue = new(big.Int).Set(p.PercentageCommissionValue)
	}
	if p.PercentageMilestoneCompletionValue != nil {
		out.PercentageMilestoneCompletionValue = new(big.Int).Set(p.PercentageMilestoneCompletionValue)
	}
	return out
}

// Validate rejects parameter sets that would make a pricing call fault or
// produce a nonsensical economy. A zero watch percentage or price divides by
// zero downstream, so both are refused here rather than at pricing time.
func (p *Params) Validate() error {
	if p == nil {
		return errors.New("params: nil")
	}
	if p.DistanciaPrice == nil || p.DistanciaPrice.Sign() <= 0 {
		return ErrZeroPrice
	}
	if p.MinimumAdValue == nil || p.MinimumAdValue.Sign() < 0 {
		return errors.New("params: minimum ad value must not be negative")
	}
	if p.PercentageAdWatchValue == nil || p.PercentageAdWatchValue.Sign() <= 0 {
		return ErrZeroWatchPercentage
	}
	denominator := big.NewInt(PercentageDenominator)
	if p.PercentageAdWatchValue.Cmp(denominator) > 0 {
		return fmt.Errorf("%w: ad watch %s", ErrPercentageOutOfRange, p.PercentageAdWatchValue)
	}
	if p.PercentageCommissionValue == nil || p.PercentageCommissionValue.Sign() < 0 {
		return errors.New("params: commission percentage must not be negative")
	}
	// Commission at the full denominator would zero every ad budget.
	if p.PercentageCommissionValue.Cmp(denominator) >= 0 {
		return fmt.Errorf("%w: commission %s", ErrPercentageOutOfRange, p.PercentageCommissionValue)
	}
	if p.PercentageMilestoneCompletionValue == nil || p.PercentageMilestoneCompletionValue.Sign() < 0 {
		return errors.New("params: milestone percentage must not be negative")
	}
	if p.PercentageMilestoneCompletionValue.Cmp(denominator) > 0 {
		return fmt.Errorf("%w: milestone %s", ErrPercentageOutOfRange, p.PercentageMilestoneCompletionValue)
	}
	return nil
}
