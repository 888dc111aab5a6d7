// Package dataloader batches and memoizes keyed lookups within one workflow.
//
// Application code that walks a graph of objects tends to issue one fetch per
// item. A Loader turns that pattern inside out: Load stages item keys, Run
// flushes every pending group with a single batch fetch per grouping key, and
// Get reads the memoized result. A key that was already resolved is never
// fetched again for the lifetime of the Loader.
//
// Unlike timer-driven data loaders, flushing is explicit: nothing is fetched
// until Run is called, and Run joins every in-flight batch before returning.
// That makes a Loader cheap to create and safe to scope to a single job such
// as one request.
package dataloader
