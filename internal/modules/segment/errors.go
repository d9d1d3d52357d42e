package segment

import "errors"

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidRequest = errors.New("invalid_request")
)
