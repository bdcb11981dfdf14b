// Package textutil provides CJK-aware text helpers: glossary term
// normalization, width folding for directory search, and rune-safe previews
// for notifications and logs.
package textutil
