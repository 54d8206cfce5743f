package schedule

import "errors"

var (
	ErrInvalidWindow = errors.New("schedule window end must not be before start")
)
