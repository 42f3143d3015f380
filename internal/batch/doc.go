// Package batch runs independent work items concurrently under an admission
// gate.
//
// A channel semaphore caps in-flight items; every item is scheduled up front
// and runs to completion or recorded failure regardless of its siblings. The
// result slice is positionally aligned with the input, so position i of the
// output always corresponds to item i even though completion order differs.
// Per-item failures become nil entries plus a logged warning; the only error
// the runner itself returns is a configuration error reported before any work
// begins.
package batch
