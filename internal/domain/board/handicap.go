package board

// HandicapPoints returns the fixed handicap placement for n stones, or nil when
// the board has no star points for it.
func HandicapPoints(width, height, n int) []Cell {
	if n < 2 || width < 7 || height < 7 {
		return nil
	}
	if n > 9 {
		n = 9
	}
	edge := 3
	if width < 13 || height < 13 {
		edge = 2
	}
	left, right := edge, width-1-edge
	top, bottom := edge, height-1-edge
	midX, midY := width/2, height/2
	hasMidX, hasMidY := width%2 == 1, height%2 == 1

	corners := []Cell{{right, top}, {left, bottom}, {right, bottom}, {left, top}}
	center := Cell{midX, midY}
	sidesLR := []Cell{{left, midY}, {right, midY}}
	sidesTB := []Cell{{midX, top}, {midX, bottom}}

	var res []Cell
	switch {
	case n <= 4:
		res = append(res, corners[:n]...)
	case n == 5:
		res = append(res, corners...)
		if hasMidX && hasMidY {
			res = append(res, center)
		}
	case n == 6 || n == 7:
		res = append(res, corners...)
		if hasMidY {
			res = append(res, sidesLR...)
		}
		if n == 7 && hasMidX && hasMidY {
			res = append(res, center)
		}
	default:
		res = append(res, corners...)
		if hasMidY {
			res = append(res, sidesLR...)
		}
		if hasMidX {
			res = append(res, sidesTB...)
		}
		if n == 9 && hasMidX && hasMidY {
			res = append(res, center)
		}
	}
	return res
}
