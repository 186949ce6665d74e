// Package main provides the entry point for the pagemd CLI.
//
// pagemd converts PDF documents into Markdown by rendering each page to an
// image and transcribing it with a vision-capable language model.
//
// Usage:
//
//	pagemd convert <file-or-url>
//	pagemd history
//
// See --help for all available options.
package main

// main is the entry point for pagemd.
func main() {
	Execute()
}
