// Package topology builds the relation graph between time-stamped maps.
//
// Nodes live in an arena indexed by insertion order and edges are kept in
// per-node adjacency lists that refer to other nodes by index. Every edge is
// stored from both ends: the relation of a to b on a's list and its inverse
// on b's list. Nodes never point back at their neighbours.
//
// A Topology is immutable once built and safe for concurrent reads.
package topology
