// Package store provides SQLite-backed registration of datasets and a log
// of sampling runs.
//
// The store keeps:
//   - Datasets: id, temporal type, unit, declared granularity, fingerprint
//   - Maps: the objects of each dataset in insertion order
//   - Samples: one row per recorded sampling run
//   - Granules: the ordered granules of each run with their fingerprints
//
// # Ordering
//
// All listings use a logical sequence number assigned at write time, never
// wall-clock timestamps, with id COLLATE BINARY as the tie-break. Maps are
// read back by their position within the dataset.
//
// # Time encoding
//
// Absolute points are stored as Unix seconds, relative points as their
// integer value. Sub-second precision is not retained.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Dataset, granule and sample fingerprints are computed by internal/ir
// using RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
