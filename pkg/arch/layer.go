package arch

import "fmt"

// Layer is one of the five fixed architectural buckets.
type Layer int

const (
	LayerEntry Layer = iota
	LayerPresentation
	LayerBusiness
	LayerData
	LayerInfrastructure
)

// AllLayers lists the layers in their fixed top-to-bottom order.
var AllLayers = []Layer{LayerEntry, LayerPresentation, LayerBusiness, LayerData, LayerInfrastructure}

var layerNames = [...]string{"entry", "presentation", "business", "data", "infrastructure"}

// String returns the lowercase layer name.
func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// Index is the zero-based position of the layer in [AllLayers].
func (l Layer) Index() int { return int(l) }

// ParseLayer maps a layer name back to its Layer.
func ParseLayer(s string) (Layer, bool) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), true
		}
	}
	return 0, false
}

// Layers partitions node ids by architectural layer. Every node of an
// analysis appears in exactly one of the slices.
type Layers struct {
	Entry          []string `json:"entry"`
	Presentation   []string `json:"presentation"`
	Business       []string `json:"business"`
	Data           []string `json:"data"`
	Infrastructure []string `json:"infrastructure"`
}

// NewLayers returns a Layers value with every slice non-nil so that it
// serializes as empty arrays.
func NewLayers() Layers {
	return Layers{
		Entry:          []string{},
		Presentation:   []string{},
		Business:       []string{},
		Data:           []string{},
		Infrastructure: []string{},
	}
}

func (ls *Layers) slot(l Layer) *[]string {
	switch l {
	case LayerEntry:
		return &ls.Entry
	case LayerPresentation:
		return &ls.Presentation
	case LayerBusiness:
		return &ls.Business
	case LayerData:
		return &ls.Data
	case LayerInfrastructure:
		return &ls.Infrastructure
	}
	panic(fmt.Sprintf("arch: unknown layer %d", int(l)))
}

// Add appends id to the slice for l.
func (ls *Layers) Add(l Layer, id string) {
	s := ls.slot(l)
	*s = append(*s, id)
}

// IDs returns the ids assigned to l.
func (ls *Layers) IDs(l Layer) []string { return *ls.slot(l) }

// Of returns the layer holding id.
func (ls *Layers) Of(id string) (Layer, bool) {
	for _, l := range AllLayers {
		for _, have := range ls.IDs(l) {
			if have == id {
				return l, true
			}
		}
	}
	return 0, false
}

// Index returns a lookup from node id to layer.
func (ls *Layers) Index() map[string]Layer {
	idx := make(map[string]Layer)
	for _, l := range AllLayers {
		for _, id := range ls.IDs(l) {
			idx[id] = l
		}
	}
	return idx
}

// Len is the total number of ids across all layers.
func (ls *Layers) Len() int {
	n := 0
	for _, l := range AllLayers {
		n += len(ls.IDs(l))
	}
	return n
}
