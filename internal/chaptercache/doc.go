// Package chaptercache persists finished chapter translations keyed by novel
// ID and chapter URL. Entries survive restarts so a chapter is translated at
// most once; the pipeline checks the cache before any network work starts.
package chaptercache
