package ads

import "errors"

var (
	ErrDuplicateKey = errors.New("ads: ad with supplied key already exists")
	ErrValueTooLow  = errors.New("ads: ad value offered is below the minimum")
	ErrEmptyKey     = errors.New("ads: ad key must not be empty")
)
