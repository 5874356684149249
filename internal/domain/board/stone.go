package board

import (
	"fmt"
	"strings"
)

// Stone is the content of a board cell. Black and White double as the side to move
// and as territory owners, Empty as dame.
type Stone int8

const (
	Empty Stone = iota
	Black
	White
)

func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (s Stone) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// Sgf returns the SGF property name of a move of this colour.
func (s Stone) Sgf() string {
	switch s {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return ""
}

func ParseStone(s string) (Stone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "black":
		return Black, nil
	case "w", "white":
		return White, nil
	}
	return Empty, fmt.Errorf("unknown color %q", s)
}

func (s Stone) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stone) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), "empty") || len(text) == 0 {
		*s = Empty
		return nil
	}
	v, err := ParseStone(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
