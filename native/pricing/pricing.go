// Package pricing implements the fixed-point ad and conversion economics.
// All percentages use a denominator of 1,000,000 and every division floors,
// so sufficiently small inputs legitimately price to zero.
package pricing

import (
	"errors"
	"math/big"

	"distancia/core/types"
)

// Denominator is the fixed-point percentage denominator (100% == 1,000,000).
const Denominator = types.PercentageDenominator

var (
	// ErrZeroWatchPercentage guards the watcher-cap division.
	ErrZeroWatchPercentage = errors.New("pricing: ad watch percentage is zero")
	// ErrZeroPrice guards the conversion divisions.
	ErrZeroPrice = errors.New("pricing: distancia price is zero")
)

var denominator = big.NewInt(Denominator)

// SplitDeposit returns the spendable ad budget after the platform commission:
// value * (1,000,000 - commissionPct) / 1,000,000.
func SplitDeposit(value, commissionPct *big.Int) *big.Int {
	remainder := new(big.Int).Sub(denominator, commissionPct)
	out := new(big.Int).Mul(value, remainder)
	return out.Quo(out, denominator)
}

// PerWatchReward returns the reward-currency amount minted per watch:
// amountToPay * watchPct * price / (1,000,000 + milestonePct).
//
// The milestone-completion percentage appearing in a per-watch formula is a
// deliberate coupling: it discounts every watch reward by the premium later
// paid out on milestone conversions, keeping the two rates solvent against
// the same budget.
func PerWatchReward(amountToPay, watchPct, price, milestonePct *big.Int) *big.Int {
	out := new(big.Int).Mul(amountToPay, watchPct)
	out.Mul(out, price)
	divisor := new(big.Int).Add(denominator, milestonePct)
	return out.Quo(out, divisor)
}

// WatcherCap returns the number of watch rewards an ad funds:
// 1,000,000 / watchPct.
func WatcherCap(watchPct *big.Int) (uint64, error) {
	if watchPct == nil || watchPct.Sign() == 0 {
		return 0, ErrZeroWatchPercentage
	}
	cap := new(big.Int).Quo(denominator, watchPct)
	return cap.Uint64(), nil
}

// ConvertRate returns the base-currency payout for burning distanciaAmount.
// A cleared milestone pays the preferential rate
// distanciaAmount * (1,000,000 + milestonePct) / (price * 1,000,000);
// otherwise the payout is distanciaAmount / price.
func ConvertRate(distanciaAmount, price, milestonePct *big.Int, milestoneCleared bool) (*big.Int, error) {
	if price == nil || price.Sign() == 0 {
		return nil, ErrZeroPrice
	}
	if !milestoneCleared {
		return new(big.Int).Quo(distanciaAmount, price), nil
	}
	out := new(big.Int).Add(denominator, milestonePct)
	out.Mul(out, distanciaAmount)
	divisor := new(big.Int).Mul(price, denominator)
	return out.Quo(out, divisor), nil
}
