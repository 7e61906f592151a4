// Package remotemandel computes an escape-time image with a coordinator and a
// fixed group of workers.
//
// The coordinator (rank 0) owns the output grid. It sends each worker one
// chunk of rows, and whenever a worker replies it merges the rows and answers
// that same worker with the next unclaimed chunk, or with a Terminate once no
// rows are left. Every worker receives exactly one Terminate. The run is
// complete when all in-flight chunks have been merged.
//
// Participants talk through an Endpoint. NewLocalGroup connects goroutines of
// one process; Hub and the worker package connect processes over websockets.
// Workers register with the hub and get ranks 1..size-1 in registration order.
// A worker that stops replying is not detected and stalls the run.
package remotemandel
