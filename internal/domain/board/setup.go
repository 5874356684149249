package board

import "strings"

// InitialSetup describes the board a game starts from.
type InitialSetup struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
	// Handicap stones are either the first Handicap moves of the record
	// (FreeHandicap) or the standard star points.
	Handicap     int    `json:"handicap" bson:"handicap"`
	FreeHandicap bool   `json:"free_handicap" bson:"free_handicap"`
	BlackStones  []Cell `json:"black_stones,omitempty" bson:"black_stones,omitempty"`
	WhiteStones  []Cell `json:"white_stones,omitempty" bson:"white_stones,omitempty"`
	FirstToMove  Stone  `json:"first_to_move,omitempty" bson:"first_to_move,omitempty"`
}

func NewSetup(size int) InitialSetup {
	return InitialSetup{Width: size, Height: size}
}

// Variation replaces the main line from RootIndex on.
type Variation struct {
	RootIndex int    `json:"root_index" bson:"root_index"`
	Moves     []Cell `json:"moves" bson:"moves"`
}

type Ruleset string

const (
	RulesJapanese Ruleset = "japanese"
	RulesKorean   Ruleset = "korean"
	RulesChinese  Ruleset = "chinese"
	RulesAGA      Ruleset = "aga"
	RulesNZ       Ruleset = "nz"
	RulesIng      Ruleset = "ing"
)

func ParseRuleset(s string) Ruleset {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "jp", "japanese":
		return RulesJapanese
	case "ko", "korean":
		return RulesKorean
	case "cn", "chinese":
		return RulesChinese
	case "":
		return RulesChinese
	default:
		return Ruleset(v)
	}
}

// TerritoryScoring reports whether empty territory plus prisoners is counted
// instead of stones plus territory.
func (r Ruleset) TerritoryScoring() bool {
	return r == RulesJapanese || r == RulesKorean
}

// Game carries what scoring needs from the game metadata.
type Game struct {
	Rules Ruleset `json:"rules"`
	Komi  float64 `json:"komi"`
}

const DefaultSize = 19

// Size returns the board dimensions, defaulting to 19x19.
func (s InitialSetup) Size() (width, height int) {
	width, height = s.Width, s.Height
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = width
	}
	return width, height
}

// FixedHandicap returns the star points placed before move 0. Explicit black
// stones replace them, free placement disables them.
func (s InitialSetup) FixedHandicap() []Cell {
	if s.FreeHandicap || len(s.BlackStones) > 0 {
		return nil
	}
	w, h := s.Size()
	return HandicapPoints(w, h, s.Handicap)
}

// FreeHandicapMoves is the number of leading moves that are handicap stones.
func (s InitialSetup) FreeHandicapMoves() int {
	if !s.FreeHandicap || s.Handicap < 2 {
		return 0
	}
	return s.Handicap
}

// FirstPlayer is the colour to move before move 0.
func (s InitialSetup) FirstPlayer() Stone {
	if s.FirstToMove == Black || s.FirstToMove == White {
		return s.FirstToMove
	}
	if s.Handicap >= 2 && !s.FreeHandicap && (len(s.BlackStones) > 0 || len(s.FixedHandicap()) > 0) {
		return White
	}
	return Black
}

// ColorOf returns the colour of move i when turns alternate without errors.
func (s InitialSetup) ColorOf(i int) Stone {
	h := s.FreeHandicapMoves()
	if i < h {
		return Black
	}
	first := s.FirstPlayer()
	if h > 0 {
		first = White
	}
	if (i-h)%2 == 1 {
		return first.Opponent()
	}
	return first
}
