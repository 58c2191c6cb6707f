// Package graph is the JSON wire format for analyses and flowcharts.
//
// It is used for files written by the CLI, HTTP responses and cache entries.
// Output is canonical: nodes are sorted by id, edges by (from, to, type) and
// connections the same way, so equal inputs serialize to equal bytes and
// can be hashed for cache keys.
//
//	data, err := graph.MarshalAnalysis(a)
//	a, err = graph.UnmarshalAnalysis(data)
//
//	key := graph.HashAnalysis(a) // ignores RunID and GeneratedAt
//
// The analysis document looks like:
//
//	{
//	  "runId": "6f1c…",
//	  "nodes": [{"id": "src_app", "name": "app", "type": "module", …}],
//	  "edges": [{"from": "src_app", "to": "src_util", "type": "import", "strength": 1}],
//	  "layers": {"entry": [], "presentation": [], "business": ["src_app"], …},
//	  "metrics": {"totalFiles": 2, …}
//	}
package graph
