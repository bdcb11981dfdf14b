// Package main hosts the tsumugi CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into the
// interactive reader loop, chapter directory and glossary inspection,
// notification checks, and configuration scaffolding. It centralizes
// configuration resolution and logger setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// That separation keeps the CLI declarative while the heavy lifting lives in
// the pipeline and store packages.
package main
