package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a board coordinate, X to the right and Y downwards from the top-left corner.
type Cell struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Pass is the sentinel cell for a pass move.
var Pass = Cell{X: -1, Y: -1}

func (c Cell) IsPass() bool {
	return c.X < 0 && c.Y < 0
}

func (c Cell) In(width, height int) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < width && c.Y < height
}

func (c Cell) String() string {
	if c.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Neighbours returns the 4-adjacent cells that lie on a width x height board.
func (c Cell) Neighbours(width, height int) []Cell {
	res := make([]Cell, 0, 4)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := Cell{X: c.X + d[0], Y: c.Y + d[1]}
		if n.In(width, height) {
			res = append(res, n)
		}
	}
	return res
}

// Sgf returns the two letter SGF coordinate ("pd"), or an empty string for a pass.
// Coordinates 26..51 use the upper case letters.
func (c Cell) Sgf() string {
	if c.IsPass() {
		return ""
	}
	return string([]byte{sgfLetter(c.X), sgfLetter(c.Y)})
}

// ParseSgfCell parses an SGF point. Both "" and "tt" are passes, as in FF[3] records.
func ParseSgfCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "tt" {
		return Pass, nil
	}
	if len(s) != 2 {
		return Pass, fmt.Errorf("invalid sgf point: %q", s)
	}
	x, y := sgfAxis(s[0]), sgfAxis(s[1])
	if x < 0 || y < 0 {
		return Pass, fmt.Errorf("invalid sgf point: %q", s)
	}
	return Cell{X: x, Y: y}, nil
}

// ParseSgfCellOn parses an SGF point of a width x height board. "tt" is the
// point (19,19) on boards that contain it and a pass otherwise.
func ParseSgfCellOn(s string, width, height int) (Cell, error) {
	if tt := (Cell{X: 19, Y: 19}); strings.TrimSpace(s) == "tt" && tt.In(width, height) {
		return tt, nil
	}
	return ParseSgfCell(s)
}

func sgfLetter(v int) byte {
	if v < 26 {
		return byte('a' + v)
	}
	return byte('A' + v - 26)
}

func sgfAxis(b byte) int {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a')
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 26
	}
	return -1
}

// Gtp returns the GTP vertex ("Q16"). Columns skip the letter I, rows count from the bottom.
func (c Cell) Gtp(height int) string {
	if c.IsPass() {
		return "pass"
	}
	col := 'A' + rune(c.X)
	if c.X >= 8 {
		col++
	}
	return fmt.Sprintf("%c%d", col, height-c.Y)
}

func ParseGtpCell(vertex string, height int) (Cell, error) {
	vertex = strings.ToUpper(strings.TrimSpace(vertex))
	if vertex == "PASS" {
		return Pass, nil
	}
	if len(vertex) < 2 {
		return Pass, fmt.Errorf("invalid vertex: %s", vertex)
	}
	col := vertex[0]
	if col < 'A' || col > 'Z' || col == 'I' {
		return Pass, fmt.Errorf("invalid column in vertex: %s", vertex)
	}
	x := int(col - 'A')
	if col > 'I' {
		x--
	}
	row, err := strconv.Atoi(vertex[1:])
	if err != nil || row < 1 || row > height {
		return Pass, fmt.Errorf("invalid row in vertex: %s", vertex)
	}
	return Cell{X: x, Y: height - row}, nil
}
