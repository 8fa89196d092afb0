package events

import (
	"math/big"

	"distancia/core/types"
)

const (
	TypeBurnRequested       = "conversion.burn_requested"
	TypeDistanciaConverted  = "conversion.converted"
	TypeConversionFailed    = "conversion.burn_failed"
	TypeTokenOwnerRefreshed = "token.owner_refreshed"
)

type BurnRequested struct {
	RequestID       string
	Account         string
	DistanciaAmount *big.Int
	NearAmount      *big.Int
	MilestoneKey    string
}

func (BurnRequested) EventType() string { return TypeBurnRequested }

func (e BurnRequested) Event() *types.Event {
	attrs := map[string]string{
		"requestId":       e.RequestID,
		"account":         e.Account,
		"distanciaAmount": formatAmount(e.DistanciaAmount),
		"nearAmount":      formatAmount(e.NearAmount),
	}
	if e.MilestoneKey != "" {
		attrs["milestoneKey"] = e.MilestoneKey
	}
	return &types.Event{Type: TypeBurnRequested, Attributes: attrs}
}

type DistanciaConverted struct {
	RequestID       string
	Account         string
	DistanciaAmount *big.Int
	NearAmount      *big.Int
}

func (DistanciaConverted) EventType() string { return TypeDistanciaConverted }

func (e DistanciaConverted) Event() *types.Event {
	return &types.Event{
		Type: TypeDistanciaConverted,
		Attributes: map[string]string{
			"requestId":       e.RequestID,
			"account":         e.Account,
			"distanciaAmount": formatAmount(e.DistanciaAmount),
			"nearAmount":      formatAmount(e.NearAmount),
		},
	}
}

type ConversionFailed struct {
	RequestID string
	Account   string
	Reason    string
}

func (ConversionFailed) EventType() string { return TypeConversionFailed }

func (e ConversionFailed) Event() *types.Event {
	return &types.Event{
		Type: TypeConversionFailed,
		Attributes: map[string]string{
			"requestId": e.RequestID,
			"account":   e.Account,
			"reason":    e.Reason,
		},
	}
}

type TokenOwnerRefreshed struct {
	Owner string
}

func (TokenOwnerRefreshed) EventType() string { return TypeTokenOwnerRefreshed }

func (e TokenOwnerRefreshed) Event() *types.Event {
	return &types.Event{
		Type:       TypeTokenOwnerRefreshed,
		Attributes: map[string]string{"owner": e.Owner},
	}
}
