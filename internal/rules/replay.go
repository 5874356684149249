package rules

import (
	"fmt"

	"goban/internal/domain/board"
	"goban/internal/errors"
)

// SetupPosition builds the position before move 0: pre-placed stones and, for
// fixed handicap, the star points.
func SetupPosition(setup board.InitialSetup) board.Position {
	width, height := setup.Size()
	b := board.NewPosition(width, height, setup.FirstPlayer()).Edit()
	for _, c := range setup.FixedHandicap() {
		b.Set(c, board.Black)
	}
	for _, c := range setup.BlackStones {
		b.Set(c, board.Black)
	}
	for _, c := range setup.WhiteStones {
		b.Set(c, board.White)
	}
	return b.Position()
}

// EffectiveMoves returns the move list replay folds over: the main line, or the
// main line up to the variation root followed by the variation.
func EffectiveMoves(moves []board.Cell, upto int, variation *board.Variation) []board.Cell {
	if variation == nil {
		return moves
	}
	root := clamp(variation.RootIndex, 0, len(moves))
	if upto < root {
		return moves
	}
	res := make([]board.Cell, 0, root+len(variation.Moves))
	res = append(res, moves[:root]...)
	return append(res, variation.Moves...)
}

// Replay reconstructs the position after move upto (inclusive). upto is clamped,
// -1 gives the setup position. A move the rules reject ends the replay and the
// last good position is returned.
func Replay(setup board.InitialSetup, moves []board.Cell, upto int, computeTerritory bool, variation *board.Variation) board.Position {
	effective := EffectiveMoves(moves, upto, variation)
	upto = clamp(upto, -1, len(effective)-1)

	pos, _, _ := fold(setup, effective[:upto+1], nil)
	if computeTerritory {
		pos = DetermineTerritory(pos, false)
	}
	return pos
}

// ValidateMoves replays the whole list and reports the first move the rules
// reject. When colors is not nil, colors[i] is the colour recorded for move i
// and must be the side to move.
func ValidateMoves(setup board.InitialSetup, moves []board.Cell, colors []board.Stone) error {
	_, i, err := fold(setup, moves, colors)
	if err != nil {
		return fmt.Errorf("move %d (%s): %w", i, moves[i], err)
	}
	return nil
}

// fold plays moves on the setup position. On a rejected move it returns the
// position before it, the move index and the error.
func fold(setup board.InitialSetup, moves []board.Cell, colors []board.Stone) (board.Position, int, error) {
	pos := SetupPosition(setup)
	handicap := setup.FreeHandicapMoves()
	for i, m := range moves {
		expected := pos.NextToMove()
		if i < handicap {
			expected = board.Black
		}
		if i < len(colors) && colors[i] != expected {
			return pos, i, fmt.Errorf("%w: %s played, %s to move", errors.ErrNotYourTurn, colors[i], expected)
		}
		var (
			next board.Position
			err  error
		)
		if i < handicap {
			next, err = PlaceHandicapStone(pos, m, i == handicap-1)
		} else {
			next, err = MakeMove(pos, pos.NextToMove(), m)
		}
		if err != nil {
			return pos, i, err
		}
		pos = next
	}
	return pos, len(moves), nil
}

// ReplayAll replays the complete move list.
func ReplayAll(setup board.InitialSetup, moves []board.Cell) board.Position {
	return Replay(setup, moves, len(moves)-1, false, nil)
}

// PlaceHandicapStone puts a free handicap stone at c without a turn change
// until the last one, after which White moves.
func PlaceHandicapStone(pos board.Position, c board.Cell, last bool) (board.Position, error) {
	switch {
	case c.IsPass():
		return board.Position{}, fmt.Errorf("%w: handicap stone cannot be a pass", errors.ErrIllegalMove)
	case !c.In(pos.Width(), pos.Height()):
		return board.Position{}, errors.ErrOutOfBoard
	case pos.At(c) != board.Empty:
		return board.Position{}, errors.ErrCellOccupied
	}
	b := pos.Edit()
	b.Set(c, board.Black)
	b.SetLastMove(c)
	if last {
		b.SetNext(board.White)
	} else {
		b.SetNext(board.Black)
	}
	return b.Position(), nil
}

// IsKoCandidate reports whether next, the position after the move that follows
// moves, has the same stones as the position two plies earlier. The rules do
// not forbid such a move; the caller asks for confirmation.
func IsKoCandidate(setup board.InitialSetup, moves []board.Cell, next board.Position) bool {
	if len(moves) == 0 || next.LastMove().IsPass() {
		return false
	}
	previous := Replay(setup, moves, len(moves)-2, false, nil)
	return next.HasTheSameStonesAs(previous)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
