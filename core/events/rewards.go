package events

import (
	"math/big"

	"distancia/core/types"
)

const (
	TypeRewardSkipped      = "rewards.skipped"
	TypeMintRequested      = "rewards.mint_requested"
	TypeRewardMinted       = "rewards.minted"
	TypeRewardMintFailed   = "rewards.mint_failed"
	TypeReservationExpired = "rewards.reservation_expired"
)

// RewardSkipped is emitted when an ad_watched call ends without issuing a mint
// request, including the silent no-op on an unknown ad key.
type RewardSkipped struct {
	AdKey   string
	Account string
	Reason  string
}

func (RewardSkipped) EventType() string { return TypeRewardSkipped }

func (e RewardSkipped) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardSkipped,
		Attributes: map[string]string{
			"adKey":   e.AdKey,
			"account": e.Account,
			"reason":  e.Reason,
		},
	}
}

type MintRequested struct {
	RequestID string
	AdID      uint64
	Account   string
	Amount    *big.Int
	ExpiresAt int64
}

func (MintRequested) EventType() string { return TypeMintRequested }

func (e MintRequested) Event() *types.Event {
	return &types.Event{
		Type: TypeMintRequested,
		Attributes: map[string]string{
			"requestId": e.RequestID,
			"adId":      uintToString(e.AdID),
			"account":   e.Account,
			"amount":    formatAmount(e.Amount),
			"expiresAt": intToString(e.ExpiresAt),
		},
	}
}

type RewardMinted struct {
	RequestID    string
	AdID         uint64
	Account      string
	Amount       *big.Int
	WatchedCount uint64
}

func (RewardMinted) EventType() string { return TypeRewardMinted }

func (e RewardMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardMinted,
		Attributes: map[string]string{
			"requestId":    e.RequestID,
			"adId":         uintToString(e.AdID),
			"account":      e.Account,
			"amount":       formatAmount(e.Amount),
			"watchedCount": uintToString(e.WatchedCount),
		},
	}
}

type RewardMintFailed struct {
	RequestID string
	AdID      uint64
	Account   string
	Reason    string
}

func (RewardMintFailed) EventType() string { return TypeRewardMintFailed }

func (e RewardMintFailed) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardMintFailed,
		Attributes: map[string]string{
			"requestId": e.RequestID,
			"adId":      uintToString(e.AdID),
			"account":   e.Account,
			"reason":    e.Reason,
		},
	}
}

type ReservationExpired struct {
	RequestID string
	AdID      uint64
	Account   string
}

func (ReservationExpired) EventType() string { return TypeReservationExpired }

func (e ReservationExpired) Event() *types.Event {
	return &types.Event{
		Type: TypeReservationExpired,
		Attributes: map[string]string{
			"requestId": e.RequestID,
			"adId":      uintToString(e.AdID),
			"account":   e.Account,
		},
	}
}
