package rules

import "goban/internal/domain/board"

// Border colour bits of an empty region.
const (
	touchesBlack = 1 << iota
	touchesWhite
)

func colorBit(s board.Stone) int {
	switch s {
	case board.Black:
		return touchesBlack
	case board.White:
		return touchesWhite
	}
	return 0
}

// analysis is a flat view of a position where removed stones count as empty.
type analysis struct {
	width, height int
	live          []board.Stone

	// rebuilt by scan
	regionOf   []int // region id of empty cells, -1 for stones
	regionMask []int
	groupOf    []int // group id of stones, -1 for empty cells
	groups     [][]int
	enclosures map[int]enclosure
}

type enclosure struct {
	empties int
	stones  int
	ownArea bool  // contains a region bordered only by the group's colour
	borders []int // ids of opposing groups touching the enclosure
}

func newAnalysis(pos board.Position) *analysis {
	a := &analysis{
		width:  pos.Width(),
		height: pos.Height(),
		live:   make([]board.Stone, pos.Width()*pos.Height()),
	}
	for i := range a.live {
		c := a.cell(i)
		if !pos.IsRemoved(c) {
			a.live[i] = pos.At(c)
		}
	}
	return a
}

func (a *analysis) cell(i int) board.Cell { return board.Cell{X: i % a.width, Y: i / a.width} }
func (a *analysis) idx(c board.Cell) int  { return c.Y*a.width + c.X }

func (a *analysis) neighbours(i int) []int {
	ns := a.cell(i).Neighbours(a.width, a.height)
	res := make([]int, len(ns))
	for k, n := range ns {
		res[k] = a.idx(n)
	}
	return res
}

// scan flood-fills empty regions and stone groups.
func (a *analysis) scan() {
	n := len(a.live)
	a.regionOf = make([]int, n)
	a.groupOf = make([]int, n)
	a.regionMask = a.regionMask[:0]
	a.groups = a.groups[:0]
	a.enclosures = make(map[int]enclosure)
	for i := range a.regionOf {
		a.regionOf[i] = -1
		a.groupOf[i] = -1
	}

	for i := 0; i < n; i++ {
		if a.live[i] == board.Empty && a.regionOf[i] < 0 {
			id := len(a.regionMask)
			mask := 0
			a.fill(i, func(j int) bool { return a.live[j] == board.Empty }, func(j int) {
				a.regionOf[j] = id
				for _, k := range a.neighbours(j) {
					mask |= colorBit(a.live[k])
				}
			})
			a.regionMask = append(a.regionMask, mask)
		}
		if a.live[i] != board.Empty && a.groupOf[i] < 0 {
			id := len(a.groups)
			color := a.live[i]
			var stones []int
			a.fill(i, func(j int) bool { return a.live[j] == color }, func(j int) {
				a.groupOf[j] = id
				stones = append(stones, j)
			})
			a.groups = append(a.groups, stones)
		}
	}
}

// fill visits every cell connected to start through cells accepted by pass.
func (a *analysis) fill(start int, pass func(int) bool, visit func(int)) {
	seen := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(i)
		for _, n := range a.neighbours(i) {
			if !seen[n] && pass(n) {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
}

func (a *analysis) colorOf(group int) board.Stone {
	return a.live[a.groups[group][0]]
}

// established reports whether the group touches a region bordered only by its colour.
func (a *analysis) established(group int) bool {
	bit := colorBit(a.colorOf(group))
	for _, s := range a.groups[group] {
		for _, n := range a.neighbours(s) {
			if r := a.regionOf[n]; r >= 0 && a.regionMask[r] == bit {
				return true
			}
		}
	}
	return false
}

// enclosure floods from the group through empty cells and stones of its colour.
func (a *analysis) enclosure(group int) enclosure {
	if e, ok := a.enclosures[group]; ok {
		return e
	}
	color := a.colorOf(group)
	bit := colorBit(color)
	var e enclosure
	bordering := make(map[int]bool)
	a.fill(a.groups[group][0], func(j int) bool {
		return a.live[j] == board.Empty || a.live[j] == color
	}, func(j int) {
		if a.live[j] == board.Empty {
			e.empties++
			if a.regionMask[a.regionOf[j]] == bit {
				e.ownArea = true
			}
		} else {
			e.stones++
		}
		for _, n := range a.neighbours(j) {
			if a.live[n] == color.Opponent() && !bordering[a.groupOf[n]] {
				bordering[a.groupOf[n]] = true
				e.borders = append(e.borders, a.groupOf[n])
			}
		}
	})
	a.enclosures[group] = e
	return e
}

// stronger reports whether opposing group h can hold the enclosure of g.
func (a *analysis) stronger(h int, g enclosure) bool {
	if a.established(h) {
		return true
	}
	he := a.enclosure(h)
	if he.empties != g.empties {
		return he.empties > g.empties
	}
	return he.stones > g.stones
}

func (a *analysis) dead(group int) bool {
	if a.established(group) {
		return false
	}
	e := a.enclosure(group)
	if e.ownArea || len(e.borders) == 0 {
		return false
	}
	for _, h := range e.borders {
		if !a.stronger(h, e) {
			return false
		}
	}
	return true
}

// DetermineTerritory marks dead stones and, unless autoScoreStonesOnly is set,
// assigns every empty or removed cell to the colour that alone borders its
// region. Stones already removed in pos stay removed. Shapes the heuristic
// cannot settle, seki included, are left alive and their regions become dame.
func DetermineTerritory(pos board.Position, autoScoreStonesOnly bool) board.Position {
	a := newAnalysis(pos)
	for {
		a.scan()
		var dead []int
		for g := range a.groups {
			if a.dead(g) {
				dead = append(dead, g)
			}
		}
		if len(dead) == 0 {
			break
		}
		for _, g := range dead {
			for _, s := range a.groups[g] {
				a.live[s] = board.Empty
			}
		}
	}

	b := pos.Edit().ClearTerritory()
	for i, s := range a.live {
		c := a.cell(i)
		if s == board.Empty && pos.At(c) != board.Empty {
			b.SetRemoved(c, true)
		}
	}
	if !autoScoreStonesOnly {
		a.fillOwnership(b)
	}
	return b.Position()
}

// EstimateOwnership computes territory for the removal set already on pos
// without looking for further dead stones.
func EstimateOwnership(pos board.Position) board.Position {
	a := newAnalysis(pos)
	a.scan()
	b := pos.Edit().ClearTerritory()
	a.fillOwnership(b)
	return b.Position()
}

func (a *analysis) fillOwnership(b *board.Builder) {
	b.ResetTerritory()
	for i, r := range a.regionOf {
		if r < 0 {
			continue
		}
		switch a.regionMask[r] {
		case touchesBlack:
			b.SetOwner(a.cell(i), board.Black)
		case touchesWhite:
			b.SetOwner(a.cell(i), board.White)
		}
	}
}

// ToggleRemoved flips the dead mark of the whole group at cell and returns the
// new position together with the cells whose mark changed. Ownership is
// recomputed when pos carried it.
func ToggleRemoved(pos board.Position, cell board.Cell) (board.Position, []board.Cell) {
	if cell.IsPass() || pos.At(cell) == board.Empty {
		return pos, nil
	}
	mark := !pos.IsRemoved(cell)
	b := pos.Edit()
	var delta []board.Cell
	for _, c := range Group(pos, cell) {
		if pos.IsRemoved(c) != mark {
			b.SetRemoved(c, mark)
			delta = append(delta, c)
		}
	}
	board.SortCells(delta)
	res := b.Position()
	if pos.HasTerritory() {
		res = EstimateOwnership(res)
	}
	return res, delta
}

// ApplyRemoved marks the given cells dead, used to restore a stored removal set.
func ApplyRemoved(pos board.Position, cells []board.Cell) board.Position {
	b := pos.Edit()
	for _, c := range cells {
		if pos.At(c) != board.Empty {
			b.SetRemoved(c, true)
		}
	}
	return b.Position()
}
