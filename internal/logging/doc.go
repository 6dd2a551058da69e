// Package logging provides concrete implementations of the moviedb.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: human-readable lines on stderr
//   - ZapLogger: JSON lines through go.uber.org/zap, for unattended runs
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
