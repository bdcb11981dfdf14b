// Package pipeline coordinates chapter translation work. Each requested
// chapter runs as its own background task through fetch, translate, term
// extraction, glossary merge, and cache persistence, while the coordinator
// guarantees a chapter is never worked on twice at once and never fetched
// again once cached. Callers collect finished work with a non-blocking Poll,
// which delivers each terminal outcome exactly once.
package pipeline
