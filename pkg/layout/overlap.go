package layout

import "math"

// overlapDepth returns how far a and b overlap along each axis. Both values
// are positive only when the boxes intersect.
func overlapDepth(a, b *Node) (dx, dy float64) {
	ca, cb := a.Center(), b.Center()
	dx = (a.Width+b.Width)/2 - math.Abs(ca.X-cb.X)
	dy = (a.Height+b.Height)/2 - math.Abs(ca.Y-cb.Y)
	return dx, dy
}

// ResolveOverlaps pushes intersecting pairs apart along the line between
// their centres, each by half the shallower overlap depth. It stops as soon
// as a pass moves nothing or after maxIter passes, and returns the number of
// passes run. Dense inputs may still overlap afterwards.
func ResolveOverlaps(nodes []Node, maxIter int) int {
	for iter := range maxIter {
		moved := false
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				a, b := &nodes[i], &nodes[j]
				ox, oy := overlapDepth(a, b)
				if ox <= 0 || oy <= 0 {
					continue
				}
				ca, cb := a.Center(), b.Center()
				vx, vy := cb.X-ca.X, cb.Y-ca.Y
				dist := math.Hypot(vx, vy)
				if dist == 0 {
					vx, vy, dist = 1, 0, 1
				}
				push := math.Min(ox, oy)/2 + 0.5
				ux, uy := vx/dist*push, vy/dist*push
				a.X -= ux
				a.Y -= uy
				b.X += ux
				b.Y += uy
				moved = true
			}
		}
		if !moved {
			return iter
		}
	}
	return maxIter
}

// Overlaps lists the id pairs whose boxes intersect.
func Overlaps(nodes []Node) [][2]string {
	var out [][2]string
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if ox, oy := overlapDepth(&nodes[i], &nodes[j]); ox > 0 && oy > 0 {
				out = append(out, [2]string{nodes[i].ID, nodes[j].ID})
			}
		}
	}
	return out
}
