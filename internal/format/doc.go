// Package format normalizes raw completion output into clean Markdown.
//
// Vision models frequently wrap their transcription in code fences or emit
// Windows line endings. This package strips that noise so downstream
// aggregation can join pages verbatim.
//
// All functions are pure and never fail; formatting problems degrade to
// returning the input unchanged rather than erroring.
package format
