package analysis

import (
	"strings"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Classify assigns a node to exactly one layer. Rules are checked in order
// and the first match wins; nodes matching nothing land in the business
// layer.
func Classify(t arch.NodeType, isEntry bool, filePath string) arch.Layer {
	p := strings.ToLower(filePath)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(p, w) {
				return true
			}
		}
		return false
	}

	switch {
	case isEntry || has("index", "main"):
		return arch.LayerEntry
	case t == arch.TypeComponent || has("component", "view"):
		return arch.LayerPresentation
	case t == arch.TypeService || t == arch.TypeAPI || has("service"):
		return arch.LayerBusiness
	case t == arch.TypeDatabase || has("model", "data"):
		return arch.LayerData
	case t == arch.TypeConfig || t == arch.TypeUtility || has("config"):
		return arch.LayerInfrastructure
	default:
		return arch.LayerBusiness
	}
}

// ClassifyNode is Classify applied to n's fields.
func ClassifyNode(n *arch.Node) arch.Layer {
	return Classify(n.Type, n.Metadata.IsEntry, n.FilePath)
}

// BuildLayers partitions nodes into layers, preserving node order within
// each layer.
func BuildLayers(nodes []*arch.Node) arch.Layers {
	layers := arch.NewLayers()
	for _, n := range nodes {
		layers.Add(ClassifyNode(n), n.ID)
	}
	return layers
}
