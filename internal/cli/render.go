package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"goban/internal/domain/board"
)

// Render draws the position as text. Stones are X and O, dead stones x and o,
// owned empty points + for Black and - for White.
func Render(pos board.Position) string {
	var sb strings.Builder
	w, h := pos.Width(), pos.Height()

	header := func() {
		sb.WriteString("   ")
		for x := 0; x < w; x++ {
			col := board.Cell{X: x, Y: 0}.Gtp(h)
			sb.WriteString(" " + strings.TrimRight(col, "0123456789"))
		}
		sb.WriteString("\n")
	}

	header()
	for y := 0; y < h; y++ {
		fmt.Fprintf(&sb, "%3d", h-y)
		for x := 0; x < w; x++ {
			sb.WriteString(" ")
			sb.WriteByte(symbol(pos, board.Cell{X: x, Y: y}))
		}
		fmt.Fprintf(&sb, " %d\n", h-y)
	}
	header()
	return sb.String()
}

func symbol(pos board.Position, c board.Cell) byte {
	dead := pos.IsRemoved(c)
	switch pos.At(c) {
	case board.Black:
		if dead {
			return 'x'
		}
		return 'X'
	case board.White:
		if dead {
			return 'o'
		}
		return 'O'
	}
	switch pos.Owner(c) {
	case board.Black:
		return '+'
	case board.White:
		return '-'
	}
	return '.'
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
