// Package glossary persists proper-noun translation pairs discovered while
// translating chapters. Terms are keyed by novel ID so every chapter of a
// novel draws on the same growing vocabulary, and a term keeps its first
// recorded translation even when later chapters propose a different one.
package glossary
