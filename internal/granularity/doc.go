// Package granularity resolves one common time granularity for datasets
// whose native granularities differ.
//
// A Granularity is a count of a unit ("1 month", "6 hours"). Division is
// calendar-aware: month and year granularities divide each other in months,
// and a fixed granularity (a day or finer) divides a calendar granularity
// only when it evenly divides one day.
//
// Resolve searches the candidate units from the coarsest to the finest and
// returns the coarsest granularity that divides every dataset granularity
// and places every dataset start on its grid, counted from the earliest
// start. Grid enumerates the cells of that grid.
package granularity
