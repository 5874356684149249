package board

import (
	"maps"
	"sort"
)

// Position is an immutable board snapshot. The zero value is not usable, build
// positions with NewPosition or by editing an existing one.
type Position struct {
	width     int
	height    int
	grid      []Stone
	next      Stone
	removed   []bool  // nil when there is no removal overlay
	territory []Stone // nil when ownership was not computed
	marks     map[Cell]string
	lastMove  Cell
	captures  [3]int // prisoners taken by Black and White during play
}

func NewPosition(width, height int, next Stone) Position {
	if next != White {
		next = Black
	}
	return Position{
		width:    width,
		height:   height,
		grid:     make([]Stone, width*height),
		next:     next,
		lastMove: Pass,
	}
}

func (p Position) Width() int  { return p.width }
func (p Position) Height() int { return p.height }

func (p Position) NextToMove() Stone { return p.next }

func (p Position) LastMove() Cell { return p.lastMove }

func (p Position) index(c Cell) int { return c.Y*p.width + c.X }

// At returns the stone at c, Empty for cells off the board.
func (p Position) At(c Cell) Stone {
	if !c.In(p.width, p.height) {
		return Empty
	}
	return p.grid[p.index(c)]
}

func (p Position) BlackStones() []Cell { return p.stonesOf(Black) }
func (p Position) WhiteStones() []Cell { return p.stonesOf(White) }

func (p Position) stonesOf(color Stone) []Cell {
	var res []Cell
	for i, s := range p.grid {
		if s == color {
			res = append(res, Cell{X: i % p.width, Y: i / p.width})
		}
	}
	return res
}

func (p Position) StoneCount(color Stone) int {
	n := 0
	for _, s := range p.grid {
		if s == color {
			n++
		}
	}
	return n
}

// Captures returns the number of stones captured by color during play.
func (p Position) Captures(color Stone) int {
	if color != Black && color != White {
		return 0
	}
	return p.captures[color]
}

func (p Position) IsRemoved(c Cell) bool {
	if p.removed == nil || !c.In(p.width, p.height) {
		return false
	}
	return p.removed[p.index(c)]
}

// RemovedSpots returns the cells marked dead, in row-major order.
func (p Position) RemovedSpots() []Cell {
	var res []Cell
	for i, r := range p.removed {
		if r {
			res = append(res, Cell{X: i % p.width, Y: i / p.width})
		}
	}
	return res
}

func (p Position) HasTerritory() bool { return p.territory != nil }

// Owner returns the territory owner of c, Empty for dame or when ownership was not computed.
func (p Position) Owner(c Cell) Stone {
	if p.territory == nil || !c.In(p.width, p.height) {
		return Empty
	}
	return p.territory[p.index(c)]
}

// Territory returns the cells owned by color.
func (p Position) Territory(color Stone) []Cell {
	var res []Cell
	for i, o := range p.territory {
		if o == color {
			res = append(res, Cell{X: i % p.width, Y: i / p.width})
		}
	}
	return res
}

func (p Position) CustomMarks() map[Cell]string {
	return maps.Clone(p.marks)
}

// WithMarks returns a copy of p with the given labels. Marks have no rule effect.
func (p Position) WithMarks(marks map[Cell]string) Position {
	p.marks = maps.Clone(marks)
	return p
}

// HasTheSameStonesAs compares stone placement only, ignoring the side to move,
// overlays and marks. Used to detect ko.
func (p Position) HasTheSameStonesAs(other Position) bool {
	if p.width != other.width || p.height != other.height {
		return false
	}
	for i := range p.grid {
		if p.grid[i] != other.grid[i] {
			return false
		}
	}
	return true
}

// Edit returns a builder over a deep copy of p.
func (p Position) Edit() *Builder {
	cp := p
	cp.grid = append([]Stone(nil), p.grid...)
	if p.removed != nil {
		cp.removed = append([]bool(nil), p.removed...)
	}
	if p.territory != nil {
		cp.territory = append([]Stone(nil), p.territory...)
	}
	cp.marks = maps.Clone(p.marks)
	return &Builder{p: cp}
}

// SortCells orders cells row by row.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
