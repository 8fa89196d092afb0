package milestones

import "errors"

var (
	ErrNotAuthorized = errors.New("milestones: caller is not the owner")
	ErrDuplicateKey  = errors.New("milestones: milestone with supplied key already exists")
	ErrEmptyKey      = errors.New("milestones: milestone key must not be empty")
	ErrValueRequired = errors.New("milestones: milestone value must be positive")
)
