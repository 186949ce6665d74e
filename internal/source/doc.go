// Package source produces the ordered sequence of page images a conversion
// run processes.
//
// It handles the two setup stages that happen before any page is transcribed:
// fetching remote documents to a local file, and rasterizing each page of the
// document to a JPEG via go-fitz (MuPDF). Both stages are fatal on failure
// since without pages there is nothing to process; per-page resilience only
// begins once the pipeline takes over.
package source
