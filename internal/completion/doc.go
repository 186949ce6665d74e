// Package completion talks to vision-capable chat-completion endpoints.
//
// It defines the Client interface the pipeline consumes plus two backends:
// an OpenAI-compatible HTTP client (OpenAI, OpenRouter, and self-hosted
// gateways speaking the same wire format) and a Gemini client built on
// google.golang.org/genai.
//
// Every backend failure wraps ErrCompletionFailed. The pipeline's processor
// catches these at the per-page boundary, so a completion error is never
// fatal to a run.
package completion
