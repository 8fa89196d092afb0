package params

import "errors"

var (
	ErrNotAuthorized = errors.New("params: caller is not the owner")
)
