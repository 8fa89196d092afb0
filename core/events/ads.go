package events

import (
	"math/big"

	"distancia/core/types"
)

const (
	TypeAdUploaded       = "ads.uploaded"
	TypeMilestoneCreated = "milestones.created"
)

type AdUploaded struct {
	ID              uint64
	Key             string
	Owner           string
	Value           *big.Int
	WatchValue      *big.Int
	WatchersAllowed uint64
}

func (AdUploaded) EventType() string { return TypeAdUploaded }

func (e AdUploaded) Event() *types.Event {
	return &types.Event{
		Type: TypeAdUploaded,
		Attributes: map[string]string{
			"id":              uintToString(e.ID),
			"key":             e.Key,
			"owner":           e.Owner,
			"value":           formatAmount(e.Value),
			"watchValue":      formatAmount(e.WatchValue),
			"watchersAllowed": uintToString(e.WatchersAllowed),
		},
	}
}

type MilestoneCreated struct {
	ID    uint64
	Key   string
	Value *big.Int
}

func (MilestoneCreated) EventType() string { return TypeMilestoneCreated }

func (e MilestoneCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeMilestoneCreated,
		Attributes: map[string]string{
			"id":    uintToString(e.ID),
			"key":   e.Key,
			"value": formatAmount(e.Value),
		},
	}
}
