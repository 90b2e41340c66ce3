// Package scheduler solves single-machine scheduling with release times and
// hard deadlines, minimizing makespan by exact branch and bound.
//
// The search explores permutations of task indices depth first. A branch is
// cut when an unscheduled task can no longer meet its deadline, or when an
// optimistic completion bound cannot beat the incumbent. Once a partial
// schedule finishes before every remaining release time, whatever its subtree
// yields is globally optimal and the whole search stops.
//
// Search and SearchIterative are the bare engine. Solver adds validation,
// statistics, observers and cancellation on top of it.
package scheduler
