package sgf

import (
	"fmt"
	"strconv"
	"strings"

	"goban/internal/domain/board"
	"goban/internal/errors"
)

// Record is what the rules engine needs from a game file.
type Record struct {
	Setup     board.InitialSetup
	Moves     []board.Cell
	Colors    []board.Stone // colour recorded for each move of Moves
	Variation *board.Variation
	// VariationColors is parallel to Variation.Moves.
	VariationColors []board.Stone
	Rules           board.Ruleset
	Komi            float64
	PlayerBlack     string
	PlayerWhite     string
	Result          string
	Date            string
}

// FromTree extracts the setup from the root node, the main line, and the first
// side branch as a variation.
func FromTree(s *SGF) (Record, error) {
	var rec Record
	if s == nil || s.Root == nil || len(s.Root.Nodes) == 0 {
		return rec, fmt.Errorf("%w: empty record", errors.ErrMalformedSgf)
	}
	root := s.Root.Nodes[0]

	width, height, err := parseSize(root.Get("SZ"))
	if err != nil {
		return rec, err
	}
	rec.Setup = board.InitialSetup{Width: width, Height: height}
	if ha := root.Get("HA"); ha != "" {
		if rec.Setup.Handicap, err = strconv.Atoi(strings.TrimSpace(ha)); err != nil {
			return rec, fmt.Errorf("%w: HA[%s]", errors.ErrMalformedSgf, ha)
		}
	}
	if km := root.Get("KM"); km != "" {
		if rec.Komi, err = strconv.ParseFloat(strings.TrimSpace(km), 64); err != nil {
			return rec, fmt.Errorf("%w: KM[%s]", errors.ErrMalformedSgf, km)
		}
	}
	if rec.Setup.BlackStones, err = parsePointList(root.Properties["AB"], width, height); err != nil {
		return rec, err
	}
	if rec.Setup.WhiteStones, err = parsePointList(root.Properties["AW"], width, height); err != nil {
		return rec, err
	}
	if pl := root.Get("PL"); pl != "" {
		if rec.Setup.FirstToMove, err = board.ParseStone(pl); err != nil {
			return rec, fmt.Errorf("%w: PL[%s]", errors.ErrMalformedSgf, pl)
		}
	}
	// handicap without AB: the handicap stones are the first moves of the record
	if rec.Setup.Handicap >= 2 && len(rec.Setup.BlackStones) == 0 {
		rec.Setup.FreeHandicap = true
	}
	rec.Rules = board.ParseRuleset(root.Get("RU"))
	rec.PlayerBlack = root.Get("PB")
	rec.PlayerWhite = root.Get("PW")
	rec.Result = root.Get("RE")
	rec.Date = root.Get("DT")

	// the root node may carry a move as well
	tree := s.Root
	nodes := tree.Nodes
	for {
		for _, node := range nodes {
			color, move, ok, err := nodeMove(node, width, height)
			if err != nil {
				return rec, err
			}
			if ok {
				rec.Moves = append(rec.Moves, move)
				rec.Colors = append(rec.Colors, color)
			}
		}
		if len(tree.Children) == 0 {
			break
		}
		if len(tree.Children) > 1 && rec.Variation == nil {
			rec.Variation, rec.VariationColors, err = branchVariation(len(rec.Moves), tree.Children[1], width, height)
			if err != nil {
				return rec, err
			}
		}
		tree = tree.Children[0]
		nodes = tree.Nodes
	}
	return rec, nil
}

func branchVariation(root int, tree *GameTree, width, height int) (*board.Variation, []board.Stone, error) {
	v := &board.Variation{RootIndex: root}
	var colors []board.Stone
	for tree != nil {
		for _, node := range tree.Nodes {
			color, move, ok, err := nodeMove(node, width, height)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				v.Moves = append(v.Moves, move)
				colors = append(colors, color)
			}
		}
		if len(tree.Children) == 0 {
			break
		}
		tree = tree.Children[0]
	}
	return v, colors, nil
}

func nodeMove(node Node, width, height int) (board.Stone, board.Cell, bool, error) {
	if node.Has("B") && node.Has("W") {
		return board.Empty, board.Pass, false, fmt.Errorf("%w: node has both B and W", errors.ErrMalformedSgf)
	}
	for _, color := range []board.Stone{board.Black, board.White} {
		key := color.Sgf()
		if !node.Has(key) {
			continue
		}
		c, err := board.ParseSgfCellOn(node.Get(key), width, height)
		if err != nil {
			return board.Empty, board.Pass, false, fmt.Errorf("%w: %v", errors.ErrMalformedSgf, err)
		}
		return color, c, true, nil
	}
	return board.Empty, board.Pass, false, nil
}

// Line returns the moves and colours replay follows: the main line, or the
// main line up to the variation root followed by the variation.
func (r Record) Line(withVariation bool) ([]board.Cell, []board.Stone) {
	if !withVariation || r.Variation == nil {
		return r.Moves, r.Colors
	}
	root := min(max(r.Variation.RootIndex, 0), len(r.Moves))
	moves := append(append([]board.Cell(nil), r.Moves[:root]...), r.Variation.Moves...)
	var colors []board.Stone
	if len(r.Colors) >= root {
		colors = append(append([]board.Stone(nil), r.Colors[:root]...), r.VariationColors...)
	}
	return moves, colors
}

func parseSize(sz string) (int, int, error) {
	sz = strings.TrimSpace(sz)
	if sz == "" {
		return board.DefaultSize, board.DefaultSize, nil
	}
	w, h, found := strings.Cut(sz, ":")
	width, err := strconv.Atoi(w)
	if err != nil || width < 1 || width > 52 {
		return 0, 0, fmt.Errorf("%w: SZ[%s]", errors.ErrMalformedSgf, sz)
	}
	if !found {
		return width, width, nil
	}
	height, err := strconv.Atoi(h)
	if err != nil || height < 1 || height > 52 {
		return 0, 0, fmt.Errorf("%w: SZ[%s]", errors.ErrMalformedSgf, sz)
	}
	return width, height, nil
}

// parsePointList expands compressed rectangles like "aa:cc".
func parsePointList(values []string, width, height int) ([]board.Cell, error) {
	var res []board.Cell
	for _, v := range values {
		from, to, isRect := strings.Cut(v, ":")
		a, err := board.ParseSgfCellOn(from, width, height)
		if err != nil || a.IsPass() {
			return nil, fmt.Errorf("%w: point %q", errors.ErrMalformedSgf, v)
		}
		if !isRect {
			res = append(res, a)
			continue
		}
		b, err := board.ParseSgfCellOn(to, width, height)
		if err != nil || b.IsPass() {
			return nil, fmt.Errorf("%w: point %q", errors.ErrMalformedSgf, v)
		}
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
				res = append(res, board.Cell{X: x, Y: y})
			}
		}
	}
	return res, nil
}

// ToTree writes the record back as a main line plus the variation. A variation
// rooted at or after the end of the main line has no SGF form and is dropped.
func (r Record) ToTree() *SGF {
	width, height := r.Setup.Size()
	size := strconv.Itoa(width)
	if width != height {
		size += ":" + strconv.Itoa(height)
	}
	props := map[string][]string{
		"FF": {"4"},
		"GM": {"1"},
		"SZ": {size},
		"KM": {strconv.FormatFloat(r.Komi, 'f', -1, 64)},
	}
	if r.Rules != "" {
		props["RU"] = []string{string(r.Rules)}
	}
	if r.Setup.Handicap > 0 {
		props["HA"] = []string{strconv.Itoa(r.Setup.Handicap)}
	}
	setStr := func(key, v string) {
		if v != "" {
			props[key] = []string{v}
		}
	}
	setStr("PB", r.PlayerBlack)
	setStr("PW", r.PlayerWhite)
	setStr("RE", r.Result)
	setStr("DT", r.Date)
	if pts := r.Setup.BlackStones; len(pts) > 0 {
		props["AB"] = cellsToSgf(pts)
	} else if fixed := r.Setup.FixedHandicap(); len(fixed) > 0 {
		props["AB"] = cellsToSgf(fixed)
	}
	if pts := r.Setup.WhiteStones; len(pts) > 0 {
		props["AW"] = cellsToSgf(pts)
	}
	if r.Setup.FirstToMove != board.Empty {
		props["PL"] = []string{r.Setup.FirstToMove.Sgf()}
	}

	root := &GameTree{Nodes: []Node{{Properties: props}}}
	branch := -1
	if r.Variation != nil && len(r.Variation.Moves) > 0 {
		branch = max(r.Variation.RootIndex, 0)
	}

	tree := root
	for i, m := range r.Moves {
		if i == branch {
			r.hangVariation(tree, i)
			break
		}
		tree.Nodes = append(tree.Nodes, r.moveNode(i, m))
	}
	return &SGF{Root: root}
}

// hangVariation puts the rest of the main line and the variation under tree as
// its first and second child.
func (r Record) hangVariation(tree *GameTree, start int) {
	main := &GameTree{}
	for k, m := range r.Moves[start:] {
		main.Nodes = append(main.Nodes, r.moveNode(start+k, m))
	}
	alt := &GameTree{}
	for k, m := range r.Variation.Moves {
		color := r.Setup.ColorOf(start + k)
		if k < len(r.VariationColors) {
			color = r.VariationColors[k]
		}
		alt.Nodes = append(alt.Nodes, colorNode(color, m))
	}
	tree.Children = append(tree.Children, main, alt)
}

// moveNode writes move i with its recorded colour, or the alternating colour
// when none was recorded.
func (r Record) moveNode(i int, m board.Cell) Node {
	color := r.Setup.ColorOf(i)
	if i < len(r.Colors) {
		color = r.Colors[i]
	}
	return colorNode(color, m)
}

func colorNode(color board.Stone, m board.Cell) Node {
	return Node{Properties: map[string][]string{color.Sgf(): {m.Sgf()}}}
}

func cellsToSgf(cells []board.Cell) []string {
	res := make([]string, len(cells))
	for i, c := range cells {
		res[i] = c.Sgf()
	}
	return res
}
