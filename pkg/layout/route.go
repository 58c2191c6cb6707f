package layout

import (
	"math"

	"github.com/matzehuels/archtower/pkg/arch"
)

// MaxCurveOffset caps the perpendicular offset of curved paths.
const MaxCurveOffset = 60.0

// curveFactor scales the curve offset with the edge length.
const curveFactor = 0.2

// SourceAnchor picks the point on n's border facing target. Directions
// between 45° and 135° below the node leave from the bottom edge; the rest
// leave from the right or left edge, whichever faces the target.
func SourceAnchor(n *Node, target Point) Point {
	c := n.Center()
	angle := math.Atan2(target.Y-c.Y, target.X-c.X) * 180 / math.Pi
	switch {
	case angle >= 45 && angle <= 135:
		return Point{X: c.X, Y: n.Y + n.Height}
	case math.Cos(angle*math.Pi/180) >= 0:
		return Point{X: n.X + n.Width, Y: c.Y}
	default:
		return Point{X: n.X, Y: c.Y}
	}
}

// TargetAnchor picks where an edge from source enters n: the top edge when n
// lies below the source, otherwise the border facing the source.
func TargetAnchor(n *Node, source Point) Point {
	c := n.Center()
	if c.Y > source.Y {
		return Point{X: c.X, Y: n.Y}
	}
	return SourceAnchor(n, source)
}

// Route returns the path for an edge between two anchor points. The path
// always starts at from and ends at to.
//
//   - inheritance edges get an elbow through the vertical midpoint
//   - edges spanning more than one layer get a stepped path through two
//     intermediate levels
//   - everything else gets a three-point curve
func Route(from, to Point, layerDelta int, t arch.EdgeType) []Point {
	switch {
	case t == arch.EdgeInheritance:
		return Elbow(from, to)
	case layerDelta > 1 || layerDelta < -1:
		return Stepped(from, to)
	default:
		return Curve(from, to)
	}
}

// Elbow is a tree-style orthogonal path.
func Elbow(from, to Point) []Point {
	midY := (from.Y + to.Y) / 2
	return []Point{from, {X: from.X, Y: midY}, {X: to.X, Y: midY}, to}
}

// Stepped descends in two steps at one and two thirds of the vertical
// distance, crossing over horizontally at the midpoint.
func Stepped(from, to Point) []Point {
	dy := to.Y - from.Y
	y1 := from.Y + dy/3
	y2 := from.Y + 2*dy/3
	midX := (from.X + to.X) / 2
	return []Point{
		from,
		{X: from.X, Y: y1},
		{X: midX, Y: y1},
		{X: midX, Y: y2},
		{X: to.X, Y: y2},
		to,
	}
}

// Curve bends the straight segment by offsetting its midpoint
// perpendicularly, proportional to length and capped at MaxCurveOffset.
func Curve(from, to Point) []Point {
	dx, dy := to.X-from.X, to.Y-from.Y
	mid := Point{X: from.X + dx/2, Y: from.Y + dy/2}
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return []Point{from, mid, to}
	}
	offset := math.Min(dist*curveFactor, MaxCurveOffset)
	ctrl := Point{X: mid.X - dy/dist*offset, Y: mid.Y + dx/dist*offset}
	return []Point{from, ctrl, to}
}
