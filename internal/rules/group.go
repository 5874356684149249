package rules

import "goban/internal/domain/board"

// stoneReader is satisfied by board.Position and *board.Builder.
type stoneReader interface {
	Width() int
	Height() int
	At(c board.Cell) board.Stone
}

// Group returns the maximal set of stones of the same colour connected to seed.
// An empty seed yields nil.
func Group(b stoneReader, seed board.Cell) []board.Cell {
	color := b.At(seed)
	if color == board.Empty || !seed.In(b.Width(), b.Height()) {
		return nil
	}
	visited := map[board.Cell]bool{seed: true}
	stack := []board.Cell{seed}
	var res []board.Cell
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res = append(res, c)
		for _, n := range c.Neighbours(b.Width(), b.Height()) {
			if !visited[n] && b.At(n) == color {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return res
}

// Liberties counts the distinct empty cells adjacent to the group.
func Liberties(b stoneReader, group []board.Cell) int {
	seen := make(map[board.Cell]bool)
	for _, c := range group {
		for _, n := range c.Neighbours(b.Width(), b.Height()) {
			if b.At(n) == board.Empty {
				seen[n] = true
			}
		}
	}
	return len(seen)
}
