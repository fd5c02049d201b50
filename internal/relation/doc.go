// Package relation classifies pairs of time extents with the Allen interval
// algebra and pairs of bounding boxes with a small set of spatial relations.
//
// Classify returns one of thirteen relations. Instants are treated as
// zero-length intervals, so an instant at the start of an interval starts it,
// an instant at its end finishes it, and two instants at the same time are
// equal. The result for (a, b) is always the inverse of the result for
// (b, a).
//
// Set is a bitset of relations used as a selector by the expression parser
// and the sampler. Over is a selector alias for overlaps and overlapped_by;
// it is never returned by Classify.
package relation
