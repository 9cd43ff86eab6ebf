package testsupport

import (
	"context"
	"sync"

	"learnpod/internal/services/llm"
)

// FakeGenerator records text generation requests and answers them from a
// script of responses.
type FakeGenerator struct {
	// Responses are returned in order; the last one repeats once exhausted.
	Responses []string
	// Respond, when set, takes precedence over Responses.
	Respond func(call int, req llm.Request) (string, error)
	// Err fails every call.
	Err error

	mu       sync.Mutex
	requests []llm.Request
}

// Generate satisfies the stage generator interfaces.
func (f *FakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	call := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	if f.Respond != nil {
		return f.Respond(call, req)
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	if call >= len(f.Responses) {
		call = len(f.Responses) - 1
	}
	return f.Responses[call], nil
}

// Requests returns a copy of every request received.
func (f *FakeGenerator) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

// Calls returns the number of requests received.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
