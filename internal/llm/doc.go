// Package llm talks to the language model backends used for transcription
// and metadata generation.
//
// Two providers are supported: Gemini over its REST API, with ordered model
// fallback, and OpenAI through go-openai. Both share one retry policy for
// transient failures.
package llm
