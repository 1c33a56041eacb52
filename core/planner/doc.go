// Package planner places activities on the cheapest contiguous runs of a
// discretized price timeline.
//
// Planning happens in two stages. Normalize sorts raw price points and
// aggregates them into slots of the configured resolution. Allocate then
// walks the activities in (priority, -duration) order and gives each one the
// lowest-cost window of free slots that fits its time window. GeneratePlan
// chains both stages and computes the totals.
//
// The package holds no state between calls and starts no goroutines.
package planner
