package rewards

import "errors"

var (
	ErrSelfRewardForbidden = errors.New("rewards: ad owner can not earn from own ad")
	ErrRewardExhausted     = errors.New("rewards: ad value already fully redeemed")
	ErrUnknownRequest      = errors.New("rewards: no reservation for request")
)
