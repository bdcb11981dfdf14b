// Package services defines shared utilities consumed by the translation
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp novel IDs, chapter URLs, stage names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (fetch vs translation vs storage) uniform across the
//     pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays consistent.
package services
