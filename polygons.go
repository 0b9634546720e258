package fbxview

// Polygons decodes an edge list. Lists holding a negative index use the FBX
// polygon-vertex encoding, where ^i closes a polygon on vertex i. Any other
// list is read as consecutive index pairs.
func Polygons(edges []int) [][]int {
	encoded := false
	for _, e := range edges {
		if e < 0 {
			encoded = true
			break
		}
	}

	var out [][]int
	if !encoded {
		for i := 0; i+1 < len(edges); i += 2 {
			out = append(out, []int{edges[i], edges[i+1]})
		}
		return out
	}

	var cur []int
	for _, e := range edges {
		if e < 0 {
			cur = append(cur, ^e)
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Segments lists the line segments of every polygon, closing loops of three
// or more vertices.
func Segments(edges []int) [][2]int {
	var out [][2]int
	for _, p := range Polygons(edges) {
		switch {
		case len(p) == 2:
			out = append(out, [2]int{p[0], p[1]})
		case len(p) > 2:
			for i := range p {
				out = append(out, [2]int{p[i], p[(i+1)%len(p)]})
			}
		}
	}
	return out
}

// triangulate fans a convex polygon.
func triangulate(p []int) [][3]int {
	if len(p) < 3 {
		return nil
	}
	tris := make([][3]int, 0, len(p)-2)
	for i := 1; i < len(p)-1; i++ {
		tris = append(tris, [3]int{p[0], p[i], p[i+1]})
	}
	return tris
}
