package sgf

import (
	"fmt"
	"sort"
	"strings"

	"goban/internal/domain/board"
)

// fixed order of well-known properties, everything else follows alphabetically
var orderedKeys = []string{"FF", "GM", "CA", "SZ", "PB", "PW", "DT", "RE", "KM", "RU", "HA", "PL", "AB", "AW", "C", "B", "W"}

func Serialize(s *SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		used := make(map[string]bool)
		for _, key := range orderedKeys {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(builder, key, values)
			}
		}

		var rest []string
		for key := range node.Properties {
			if !used[key] {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			writeProperty(builder, key, node.Properties[key])
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func writeProperty(builder *strings.Builder, key string, values []string) {
	builder.WriteString(key)
	for _, v := range values {
		builder.WriteString("[")
		builder.WriteString(escape(v))
		builder.WriteString("]")
	}
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}

// AppendMove adds a move node to the end of the main line of a serialized
// single-line record without parsing it.
func AppendMove(sgfText string, color board.Stone, cell board.Cell) string {
	sgfText = strings.TrimRight(sgfText, " \n\r\t")
	sgfText = strings.TrimSuffix(sgfText, ")")
	return sgfText + fmt.Sprintf(";%s[%s])", color.Sgf(), cell.Sgf())
}
