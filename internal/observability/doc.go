// Package observability provides the operation log and metrics for
// pngstash. It uses structured JSON Lines (JSONL) for event persistence
// and derives metrics on-demand from the event log.
package observability
