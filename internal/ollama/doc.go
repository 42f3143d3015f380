// Package ollama is the chat transport for a locally hosted Ollama server.
//
// It speaks the native /api/chat JSON protocol in both buffered and streaming
// (NDJSON) modes and normalizes the two into a single ChatResponse value, so
// callers never branch on wire shape. Connection and status failures surface
// as typed errors, and transient failures are retried with exponential
// back-off. The HTTP client is injected via the base URL so tests redirect
// calls to local httptest servers.
package ollama
