/*
Copyright © 2023 the Tomplot authors.
This file is part of Tomplot.

Tomplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Tomplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Tomplot.  If not, see <http://www.gnu.org/licenses/>.
*/

package griddata

import (
	"math"

	"github.com/ctessum/geom"
)

// triangle is one Delaunay triangle. i0, i1, i2 index the original
// data points; negative indices refer to super-triangle vertices.
// The embedded polygon holds the vertices and makes triangles
// indexable by the rtree.
type triangle struct {
	geom.Polygon
	i0, i1, i2 int
	p0, p1, p2 geom.Point

	// circumcircle
	cx, cy, r2 float64
}

func newTriangle(i0, i1, i2 int, p0, p1, p2 geom.Point) *triangle {
	t := &triangle{
		Polygon: geom.Polygon{{p0, p1, p2}},
		i0:      i0, i1: i1, i2: i2,
		p0: p0, p1: p1, p2: p2,
	}
	t.circumcircle()
	return t
}

func (t *triangle) circumcircle() {
	ax, ay := t.p0.X, t.p0.Y
	bx, by := t.p1.X, t.p1.Y
	cx, cy := t.p2.X, t.p2.Y
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if d == 0 {
		// Degenerate (collinear) triangle; give it an empty
		// circumcircle so no point ever falls inside it.
		t.cx, t.cy, t.r2 = 0, 0, -1
		return
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	t.cx = (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	t.cy = (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	dx := ax - t.cx
	dy := ay - t.cy
	t.r2 = dx*dx + dy*dy
}

func (t *triangle) circumcircleContains(p geom.Point) bool {
	dx := p.X - t.cx
	dy := p.Y - t.cy
	return dx*dx+dy*dy <= t.r2
}

// barycentric returns the barycentric weights of p in t and whether p
// lies inside (or on the boundary of) the triangle.
func (t *triangle) barycentric(p geom.Point) (w0, w1, w2 float64, inside bool) {
	d := (t.p1.Y-t.p2.Y)*(t.p0.X-t.p2.X) + (t.p2.X-t.p1.X)*(t.p0.Y-t.p2.Y)
	if d == 0 {
		return 0, 0, 0, false
	}
	w0 = ((t.p1.Y-t.p2.Y)*(p.X-t.p2.X) + (t.p2.X-t.p1.X)*(p.Y-t.p2.Y)) / d
	w1 = ((t.p2.Y-t.p0.Y)*(p.X-t.p2.X) + (t.p0.X-t.p2.X)*(p.Y-t.p2.Y)) / d
	w2 = 1 - w0 - w1
	const eps = 1e-12
	inside = w0 >= -eps && w1 >= -eps && w2 >= -eps
	return w0, w1, w2, inside
}

type edge struct{ a, b int }

func normEdge(a, b int) edge {
	if a < b {
		return edge{a, b}
	}
	return edge{b, a}
}

// triangulate builds the Delaunay triangulation of the points by
// Bowyer-Watson insertion. Triangles touching the enclosing
// super-triangle are dropped from the result, so collinear input
// yields no triangles.
func triangulate(points []geom.Point) []*triangle {
	if len(points) < 3 {
		return nil
	}

	b := geom.NewBounds()
	for _, p := range points {
		b.Extend(p.Bounds())
	}
	span := math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	if span == 0 {
		return nil
	}
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2
	// Super-triangle vertices, indexed -1, -2, -3.
	s0 := geom.Point{X: midX - 20*span, Y: midY - 10*span}
	s1 := geom.Point{X: midX + 20*span, Y: midY - 10*span}
	s2 := geom.Point{X: midX, Y: midY + 20*span}

	pt := func(i int) geom.Point {
		switch i {
		case -1:
			return s0
		case -2:
			return s1
		case -3:
			return s2
		}
		return points[i]
	}

	tris := []*triangle{newTriangle(-1, -2, -3, s0, s1, s2)}

	for i, p := range points {
		// Find all triangles whose circumcircle contains the new
		// point; their union is the insertion cavity.
		var bad []*triangle
		var keep []*triangle
		for _, t := range tris {
			if t.circumcircleContains(p) {
				bad = append(bad, t)
			} else {
				keep = append(keep, t)
			}
		}
		if len(bad) == 0 {
			// Duplicate of an existing point, or a numerical corner
			// case; skip it rather than corrupting the triangulation.
			continue
		}
		// Boundary edges of the cavity appear in exactly one bad
		// triangle.
		edgeCount := make(map[edge]int)
		for _, t := range bad {
			edgeCount[normEdge(t.i0, t.i1)]++
			edgeCount[normEdge(t.i1, t.i2)]++
			edgeCount[normEdge(t.i2, t.i0)]++
		}
		tris = keep
		for e, n := range edgeCount {
			if n != 1 {
				continue
			}
			tris = append(tris, newTriangle(e.a, e.b, i, pt(e.a), pt(e.b), p))
		}
	}

	var out []*triangle
	for _, t := range tris {
		if t.i0 < 0 || t.i1 < 0 || t.i2 < 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}
