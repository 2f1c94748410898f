// Package telemetry provides observability for Seaway.
//
//   - logging: structured slog setup with runtime level changes
//   - metrics: Prometheus metrics for the relay, dispatcher, and executor
//
// Both sides of the relay use the same collector shape; the side that does
// not exercise a metric family simply never increments it.
package telemetry
