// Package model defines the core data structures used throughout pagemd.
//
// This package contains the following main types:
//   - PageImage: A single rasterized document page handed to the pipeline
//   - PageResult: The transcription outcome for one page (success or skipped)
//   - RunResult: The aggregated result of one conversion run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (source, pipeline, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
