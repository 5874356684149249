package errors

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrCellOccupied = fmt.Errorf("%w: cell is occupied", ErrIllegalMove)
	ErrSuicide      = fmt.Errorf("%w: suicide", ErrIllegalMove)
	ErrOutOfBoard   = fmt.Errorf("%w: cell is outside the board", ErrIllegalMove)

	ErrKoCandidate    = errors.New("move recreates the previous position, confirmation required")
	ErrNotYourTurn    = errors.New("it is the other player's turn")
	ErrWrongPhase     = errors.New("operation is not allowed in the current game phase")
	ErrGameNotFound   = errors.New("game not found")
	ErrMalformedSgf   = errors.New("malformed sgf")
	ErrSgfNotCached   = errors.New("sgf record is not cached")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)
