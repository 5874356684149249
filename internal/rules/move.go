package rules

import (
	"goban/internal/domain/board"
	"goban/internal/errors"
)

// MakeMove plays color at cell. Captured opposing groups are taken off the board
// and counted as prisoners. Occupied cells, cells off the board and suicides are
// rejected with an error wrapping errors.ErrIllegalMove and a zero Position.
//
// Ko is not checked here, see IsKoCandidate.
func MakeMove(pos board.Position, color board.Stone, cell board.Cell) (board.Position, error) {
	if color != board.Black && color != board.White {
		color = pos.NextToMove()
	}
	if cell.IsPass() {
		return pos.Edit().
			ClearOverlays().
			SetNext(color.Opponent()).
			SetLastMove(board.Pass).
			Position(), nil
	}
	if !cell.In(pos.Width(), pos.Height()) {
		return board.Position{}, errors.ErrOutOfBoard
	}
	if pos.At(cell) != board.Empty {
		return board.Position{}, errors.ErrCellOccupied
	}

	b := pos.Edit().ClearOverlays()
	b.Set(cell, color)

	captured := 0
	for _, n := range cell.Neighbours(pos.Width(), pos.Height()) {
		if b.At(n) != color.Opponent() {
			continue
		}
		group := Group(b, n)
		if Liberties(b, group) > 0 {
			continue
		}
		for _, c := range group {
			b.Set(c, board.Empty)
		}
		captured += len(group)
	}

	if Liberties(b, Group(b, cell)) == 0 {
		return board.Position{}, errors.ErrSuicide
	}

	return b.AddCaptures(color, captured).
		SetNext(color.Opponent()).
		SetLastMove(cell).
		Position(), nil
}

// IsLegal reports whether MakeMove would accept the move.
func IsLegal(pos board.Position, color board.Stone, cell board.Cell) bool {
	_, err := MakeMove(pos, color, cell)
	return err == nil
}
