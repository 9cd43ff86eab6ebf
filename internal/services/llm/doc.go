// Package llm provides the text generation client used by the script,
// explainer, and question stages.
//
// Requests go to Gemini's OpenAI-compatible chat completion endpoint with a
// bearer API key. Each call is wrapped in the shared retry policy: HTTP 408,
// 429 and 5xx responses, empty completions, and network failures are retried
// with exponential backoff, while other 4xx responses fail immediately. An
// optional requests-per-minute limiter spaces calls out before they are sent.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Generate: send a single prompt, receive the completion text.
// Client.HealthCheck: verify the API key and model answer a trivial prompt.
// NewGenaiCounter / CostFunc: exact token counting with an estimate fallback,
// used as the chunker's cost oracle.
package llm
