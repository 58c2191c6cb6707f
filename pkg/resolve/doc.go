// Package resolve turns raw import specifiers into graph edges.
//
// Resolution is tried in order: relative specifiers ("./x", "../x") against
// the importing file's directory, absolute specifiers ("/x") against the
// repository root, then bare-name heuristics. Python dotted modules match any
// Python file whose path segments end with (or otherwise contain) the module
// segments; JavaScript and TypeScript bare names without dots or slashes
// match any file with that base name. Everything else becomes an external
// pseudo-node id (see [arch.ExternalID]) that is an edge target but never a
// node.
//
// The heuristics can match unrelated files with generic names, such as two
// utils.py in different packages; the first match in id order wins.
package resolve
