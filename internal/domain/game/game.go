package game

import (
	"time"

	"goban/internal/domain/board"
)

type Game struct {
	GameKey     string             `json:"game_key" bson:"game_key"`
	Status      string             `json:"status" bson:"status"`
	Setup       board.InitialSetup `json:"setup" bson:"setup"`
	Moves       []Move             `json:"moves" bson:"moves"`
	Variation   *board.Variation   `json:"variation,omitempty" bson:"variation,omitempty"`
	Rules       board.Ruleset      `json:"rules" bson:"rules"`
	Komi        float64            `json:"komi" bson:"komi"`
	PlayerBlack string             `json:"player_black" bson:"player_black"`
	PlayerWhite string             `json:"player_white" bson:"player_white"`
	Removed     []board.Cell       `json:"removed,omitempty" bson:"removed,omitempty"`
	ResumedAt   int                `json:"resumed_at,omitempty" bson:"resumed_at,omitempty"`
	Result      string             `json:"result,omitempty" bson:"result,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
	Sgf         string             `json:"sgf,omitempty" bson:"-"`
}

type Move struct {
	Color board.Stone `json:"color" bson:"color"`
	Cell  board.Cell  `json:"cell" bson:"cell"`
}

// Cells returns the move list the way the rules engine consumes it.
func (g Game) Cells() []board.Cell {
	res := make([]board.Cell, len(g.Moves))
	for i, m := range g.Moves {
		res[i] = m.Cell
	}
	return res
}

func (g Game) Colors() []board.Stone {
	res := make([]board.Stone, len(g.Moves))
	for i, m := range g.Moves {
		res[i] = m.Color
	}
	return res
}

// ScoringRules returns the ruleset and komi used to count the game.
func (g Game) ScoringRules() board.Game {
	return board.Game{Rules: g.Rules, Komi: g.Komi}
}

// TrailingPasses counts consecutive passes at the end of the move list that
// were played after the last resume.
func (g Game) TrailingPasses() int {
	n := 0
	for i := len(g.Moves) - 1; i >= g.ResumedAt && i >= 0 && g.Moves[i].Cell.IsPass(); i-- {
		n++
	}
	return n
}

type CreateGameRequest struct {
	BoardSize    int      `json:"board_size"`
	Handicap     int      `json:"handicap"`
	FreeHandicap bool     `json:"free_handicap"`
	Komi         *float64 `json:"komi,omitempty"`
	Rules        string   `json:"rules"`
	PlayerBlack  string   `json:"player_black"`
	PlayerWhite  string   `json:"player_white"`
}

type GameCreateResponse struct {
	UniqueKey string `json:"unique_key"`
}

type ImportSgfRequest struct {
	Sgf string `json:"sgf"`
}

// MoveRequest carries a move in SGF coordinates. An empty value, "tt" or
// "pass" is a pass.
type MoveRequest struct {
	Color       string `json:"color"`
	Coordinates string `json:"coordinates"`
	ConfirmKo   bool   `json:"confirm_ko"`
}

type ToggleRequest struct {
	Coordinates string `json:"coordinates"`
}

type GameStateResponse struct {
	Status   string         `json:"status"`
	Position board.Position `json:"position"`
	Move     *Move          `json:"move,omitempty"`
	Changed  []board.Cell   `json:"changed,omitempty"`
	Score    *Score         `json:"score,omitempty"`
}

type Score struct {
	Black  float64       `json:"black"`
	White  float64       `json:"white"`
	Result string        `json:"result"`
	Rules  board.Ruleset `json:"rules"`
	Komi   float64       `json:"komi"`
}
