// Package parallel provides a bounded worker pool.
//
// The task store uses it to fetch every stored entry concurrently on load,
// the way the storage contract only offers per-key reads.
package parallel
