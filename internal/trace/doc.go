// Package trace provides lightweight tracing for the quill tokenizer driver.
//
// Tracing records when files are loaded, lexed and rendered, which helps to
// find slow inputs and stuck workers when a whole directory is tokenized.
//
// # Usage
//
//	quill tokenize --trace=- --trace-level=detail ./src
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is off
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events in memory for a post-mortem dump
//   - MultiTracer: fans events out to several tracers
//
// # Levels and scopes
//
// LevelPhase records driver and pass boundaries (load, lex, render),
// LevelDetail adds one span per file, LevelDebug records everything.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lex", parentID)
//	defer span.End("")
package trace
