// Package arch defines the data model shared by every stage of the
// architecture graph engine.
//
// # Overview
//
// An analysis run turns a repository snapshot into a dependency graph of
// [Node] values connected by [Edge] values, partitions the nodes into five
// architectural [Layer] buckets, and computes aggregate [Metrics]. The
// result is an [Analysis], which the layout engine later turns into a
// positioned flowchart.
//
// # Identity
//
// Node identity depends only on the normalized file path. [NodeID] strips a
// known source extension and replaces every character outside [A-Za-z0-9_]
// with an underscore, so "src/index.ts" and the relative import "./index"
// resolved from "src/" both map to "src_index". Re-running an analysis over
// the same files always yields the same ids, regardless of the order in which
// files arrived.
//
// Imports that cannot be resolved to a file become external pseudo-nodes with
// ids produced by [ExternalID] ("external_<sanitized-specifier>"). External ids
// appear as edge targets and in [Node.Dependencies] but never in
// [Analysis.Nodes].
//
// # Concurrency
//
// Values in this package are plain data. An [Analysis] is owned by the run
// that produced it; share it read-only or copy it.
package arch
