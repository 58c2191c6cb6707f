// Package layout positions an analysed architecture graph on a 2-D canvas
// and routes its connections.
//
// [Compute] stacks the five layers as vertical bands, splits each band into
// rows by hierarchy level (see package hierarchy), and spreads each row
// horizontally in importance order. A bounded overlap pass then separates
// any intersecting boxes; it is best effort and may stop with overlaps left
// on dense graphs.
//
// Connection paths come from pure functions of their end points, the number
// of layers crossed and the edge type: [Elbow] for inheritance, [Stepped]
// when more than one layer is crossed, and [Curve] otherwise. Anchors are
// chosen by [SourceAnchor] and [TargetAnchor].
package layout
