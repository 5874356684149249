package board

// Builder mutates a private copy of a Position. It is the only way to change
// board contents; Position itself stays read-only.
type Builder struct {
	p Position
}

func (b *Builder) Width() int  { return b.p.width }
func (b *Builder) Height() int { return b.p.height }

func (b *Builder) At(c Cell) Stone { return b.p.At(c) }

func (b *Builder) Set(c Cell, s Stone) *Builder {
	if c.In(b.p.width, b.p.height) {
		b.p.grid[b.p.index(c)] = s
	}
	return b
}

func (b *Builder) SetNext(s Stone) *Builder {
	b.p.next = s
	return b
}

func (b *Builder) SetLastMove(c Cell) *Builder {
	b.p.lastMove = c
	return b
}

func (b *Builder) AddCaptures(by Stone, n int) *Builder {
	if by == Black || by == White {
		b.p.captures[by] += n
	}
	return b
}

func (b *Builder) IsRemoved(c Cell) bool { return b.p.IsRemoved(c) }

func (b *Builder) SetRemoved(c Cell, removed bool) *Builder {
	if !c.In(b.p.width, b.p.height) {
		return b
	}
	if b.p.removed == nil {
		if !removed {
			return b
		}
		b.p.removed = make([]bool, len(b.p.grid))
	}
	b.p.removed[b.p.index(c)] = removed
	return b
}

// ResetTerritory allocates an all-dame ownership map.
func (b *Builder) ResetTerritory() *Builder {
	b.p.territory = make([]Stone, len(b.p.grid))
	return b
}

func (b *Builder) SetOwner(c Cell, owner Stone) *Builder {
	if !c.In(b.p.width, b.p.height) {
		return b
	}
	if b.p.territory == nil {
		b.ResetTerritory()
	}
	b.p.territory[b.p.index(c)] = owner
	return b
}

func (b *Builder) ClearTerritory() *Builder {
	b.p.territory = nil
	return b
}

// ClearOverlays drops the removal set, ownership and marks.
func (b *Builder) ClearOverlays() *Builder {
	b.p.removed = nil
	b.p.territory = nil
	b.p.marks = nil
	return b
}

// Position returns the built snapshot. The builder must not be used afterwards.
func (b *Builder) Position() Position {
	p := b.p
	b.p = Position{}
	return p
}
