package errors

import "errors"

var (
	ErrDeckExhausted    = errors.New("cannot deal from empty deck")
	ErrIllegalAction    = errors.New("game is not in playing state")
	ErrGameNotFound     = errors.New("game not found")
	ErrGameIDRequired   = errors.New("game id is required")
	ErrIDSpaceExhausted = errors.New("could not allocate a unique game id")
	ErrGameNotFinished  = errors.New("game is not finished")
)
