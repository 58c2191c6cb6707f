// Package hierarchy assigns dependency levels to the nodes of an architecture
// graph. A level is the length of the longest internal dependency chain
// starting at a node; leaves are level 1. See [Build] for how cycles are
// handled.
package hierarchy
