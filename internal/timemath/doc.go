// Package timemath implements calendar arithmetic on absolute timestamps.
//
// ComputeDelta measures the difference between two timestamps the way the
// granularity resolver needs it: whole calendar months are counted by month
// crossings with day-of-month clamping, and the sub-month remainder is
// reported as cumulative day, hour, minute and second totals.
//
// All functions operate in UTC and have no side effects.
package timemath
