package board

import "encoding/json"

type positionJSON struct {
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	NextToMove     Stone      `json:"next_to_move"`
	LastMove       *Cell      `json:"last_move,omitempty"`
	BlackStones    []Cell     `json:"black_stones"`
	WhiteStones    []Cell     `json:"white_stones"`
	BlackCaptures  int        `json:"black_captures"`
	WhiteCaptures  int        `json:"white_captures"`
	Removed        []Cell     `json:"removed,omitempty"`
	BlackTerritory []Cell     `json:"black_territory,omitempty"`
	WhiteTerritory []Cell     `json:"white_territory,omitempty"`
	Marks          []markJSON `json:"marks,omitempty"`
}

type markJSON struct {
	Cell  Cell   `json:"cell"`
	Label string `json:"label"`
}

func (p Position) MarshalJSON() ([]byte, error) {
	out := positionJSON{
		Width:          p.width,
		Height:         p.height,
		NextToMove:     p.next,
		BlackStones:    nonNil(p.BlackStones()),
		WhiteStones:    nonNil(p.WhiteStones()),
		BlackCaptures:  p.Captures(Black),
		WhiteCaptures:  p.Captures(White),
		Removed:        p.RemovedSpots(),
		BlackTerritory: p.Territory(Black),
		WhiteTerritory: p.Territory(White),
	}
	if !p.lastMove.IsPass() {
		lm := p.lastMove
		out.LastMove = &lm
	}
	cells := make([]Cell, 0, len(p.marks))
	for c := range p.marks {
		cells = append(cells, c)
	}
	SortCells(cells)
	for _, c := range cells {
		out.Marks = append(out.Marks, markJSON{Cell: c, Label: p.marks[c]})
	}
	return json.Marshal(out)
}

func nonNil(cells []Cell) []Cell {
	if cells == nil {
		return []Cell{}
	}
	return cells
}
