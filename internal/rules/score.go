package rules

import (
	"strconv"

	"goban/internal/domain/board"
)

// ScorePosition counts the position with the game's rules. Area rules count
// live stones plus territory, territory rules count territory plus prisoners
// (captures during play and the opponent's dead stones). Komi goes to White.
// Ownership is derived from the removal set when pos has none.
func ScorePosition(pos board.Position, game board.Game) (black, white float64) {
	if !pos.HasTerritory() {
		pos = EstimateOwnership(pos)
	}

	deadBlack, deadWhite := 0, 0
	for _, c := range pos.RemovedSpots() {
		switch pos.At(c) {
		case board.Black:
			deadBlack++
		case board.White:
			deadWhite++
		}
	}

	black = float64(len(pos.Territory(board.Black)))
	white = float64(len(pos.Territory(board.White)))
	if game.Rules.TerritoryScoring() {
		black += float64(pos.Captures(board.Black) + deadWhite)
		white += float64(pos.Captures(board.White) + deadBlack)
	} else {
		black += float64(pos.StoneCount(board.Black) - deadBlack)
		white += float64(pos.StoneCount(board.White) - deadWhite)
	}
	white += game.Komi
	return black, white
}

// Result formats the outcome the way SGF RE properties do: "B+3.5", "W+0.5", "Draw".
func Result(black, white float64) string {
	switch {
	case black > white:
		return "B+" + formatPoints(black-white)
	case white > black:
		return "W+" + formatPoints(white-black)
	}
	return "Draw"
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
