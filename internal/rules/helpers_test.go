package rules

import (
	"goban/internal/domain/board"
)

// positionFromRows builds a position from rows of 'X' (black), 'O' (white) and '.'.
func positionFromRows(next board.Stone, rows ...string) board.Position {
	b := board.NewPosition(len(rows[0]), len(rows), next).Edit()
	for y, row := range rows {
		for x, ch := range row {
			switch ch {
			case 'X':
				b.Set(board.Cell{X: x, Y: y}, board.Black)
			case 'O':
				b.Set(board.Cell{X: x, Y: y}, board.White)
			}
		}
	}
	return b.Position()
}

func cellSet(cells []board.Cell) map[board.Cell]bool {
	res := make(map[board.Cell]bool, len(cells))
	for _, c := range cells {
		res[c] = true
	}
	return res
}
