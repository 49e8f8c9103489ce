// Package network defines the node/edge arena shared by every netview
// component.
//
// A [Dataset] is built once from the raw node and edge records of a session
// and never grows or shrinks afterwards: filters, selection and layout only
// change which records are shown and where they sit. Nodes and edges are
// addressed by their stable [Node.Index] / [Edge.Index], which double as the
// physics-engine identity and the join key for incremental redraws.
//
// # Edge Resolution
//
// Edge records carry "source" and "target" keys that reference nodes either
// by the node's "id" field or by array index. [NewDataset] resolves them
// once into [Edge.SourceIndex] and [Edge.TargetIndex]; edges whose endpoints
// cannot be resolved are dropped and counted in [Dataset.Dropped] instead of
// failing the whole session.
//
// # Loose Values
//
// Field values come from heterogeneous JSON, so numbers may arrive as
// strings. [ToFloat] and [LooseEqual] give the tolerant comparisons the
// filter pipeline and classifier rely on.
package network
