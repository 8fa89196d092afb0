package conversion

import "errors"

var (
	ErrMilestoneNotFound  = errors.New("conversion: milestone doesnt exist")
	ErrNonPositiveAmount  = errors.New("conversion: distancia amount must be positive")
	ErrUnknownRequest     = errors.New("conversion: no pending conversion for request")
	ErrPayerNotConfigured = errors.New("conversion: payer not configured")
)
