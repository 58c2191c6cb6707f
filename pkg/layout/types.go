package layout

import "github.com/matzehuels/archtower/pkg/arch"

// Point is a 2-D canvas coordinate. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is an analysed node with its position on the canvas. X and Y are the
// top-left corner.
type Node struct {
	arch.Node

	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Layer      string  `json:"layer"`
	LayerIndex int     `json:"layerIndex"`
	Level      int     `json:"level"`
	Importance float64 `json:"importance"`
}

// Center returns the midpoint of the node's box.
func (n *Node) Center() Point {
	return Point{X: n.X + n.Width/2, Y: n.Y + n.Height/2}
}

// Connection is an edge between two placed nodes with its routed path.
type Connection struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Type     arch.EdgeType `json:"type"`
	Strength float64       `json:"strength"`
	Path     []Point       `json:"path,omitempty"`
}

// Flowchart is the positioned form of an analysis.
type Flowchart struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
}

// Node returns the placed node with the given id, or nil.
func (f *Flowchart) Node(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}
