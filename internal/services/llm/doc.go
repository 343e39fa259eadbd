// Package llm provides a streaming vision chat client for any
// OpenAI-compatible endpoint (Ollama, OpenRouter, OpenAI, Gemini proxies).
//
// This package is used by:
//   - analysis: send the compiled instruction plus frames and stream the reply
//   - preflight: verify the endpoint answers and the model exists
//
// # Request Shape
//
// Each Generate call sends one user message whose parts are the
// instruction text followed by one data-URI image part per frame.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Generate: open a reply stream; read chunks with Stream.Recv.
// Collect: drain a stream into one string.
// Client.HealthCheck: verify the endpoint and model availability.
//
// # Retry Behaviour
//
// Opening the stream is retried on HTTP 408/429/5xx errors and on failures
// without a status that services.Retryable accepts (transport errors, not
// malformed responses or unsupported requests), with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Once chunks start flowing nothing is retried; a broken stream
// surfaces as an error and the caller keeps the partial text. Context
// cancellation aborts retries immediately.
//
// # Temperature Fallback
//
// When the endpoint rejects a temperature above MaxTemperature, the
// request is repeated once at MaxTemperature.
package llm
