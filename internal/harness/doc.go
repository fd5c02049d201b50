// Package harness runs sampling scenarios as executable tests.
//
// A scenario names its datasets, either CUE definition files or inline YAML,
// samples them once and checks assertions against the granules.
//
// # Scenario Format
//
//	name: monthly_alignment
//	description: "Monthly, quarterly and yearly maps align on months"
//	specs:
//	  - datasets.cue
//	datasets:
//	  - id: yearly
//	    granularity: 1 year
//	    series: { start: "2001-01-01", count: 1 }
//	sample:
//	  datasets: [monthly, quarterly, yearly]
//	  expression: "{contains,during,equal,starts,finishes}"
//	  mode: granularity
//	assertions:
//	  - type: granularity
//	    expect: 1 month
//	  - type: granule_count
//	    count: 12
//	  - type: granule_members
//	    index: 0
//	    members: { monthly: [monthly_1], quarterly: [quarterly_1], yearly: [yearly_1] }
//
// # Assertion Types
//
//   - granule_count: the number of granules produced
//   - granularity: the granularity resolved from the datasets
//   - granule_members: the member IDs of one granule, per dataset
//   - granule_extent: the start and end of one granule
//   - relation: the Allen relation between two maps
//
// # Determinism
//
// Every scenario runs against a fresh in-memory store. The datasets are
// registered, the run is recorded and then replayed; a replay that does not
// reproduce every granule fingerprint fails the scenario. Logs are
// discarded.
package harness
