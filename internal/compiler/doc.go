// Package compiler turns CUE dataset definitions into ir.Dataset values.
//
// A definition file declares datasets under the top-level "dataset" field:
//
//	dataset: precip: {
//		type:        "absolute"
//		granularity: "1 month"
//		maps: [
//			{id: "precip_jan", start: "2001-01-01", end: "2001-02-01"},
//			{start: "2001-02-01", end: "2001-03-01", bbox: {north: 10, south: 0, east: 10, west: 0}},
//		]
//	}
//
// Absolute timestamps accept any layout dateparse understands and are
// normalised to UTC. Relative datasets use integer positions and name their
// unit. A "series" block generates consecutive maps from a start and a
// count using the declared granularity. Maps without an id get a
// deterministic UUID derived from the dataset and the start.
package compiler
