// Package pipeline runs page transcription under a concurrency policy.
//
// The pipeline has two layers. The Processor handles one page: it calls the
// completion client, formats the output, records token usage, and absorbs any
// failure into a skipped result. The Scheduler runs the Processor over all
// pages in one of two modes: format-maintenance (strictly serial, each page
// receives the previous page's output as context) or independent (bounded
// parallelism via errgroup, results written to index-addressed slots so final
// order never depends on completion order).
//
// Design decision: Results are placed into a pre-allocated slice indexed by
// page position instead of being appended on completion. Appending would make
// output order depend on which in-flight call finishes first; index-addressed
// slots remove that ambiguity entirely.
package pipeline
