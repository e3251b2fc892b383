// Package log provides simple leveled logging for chuck-hq.
//
// Output is colored with ANSI prefixes and split by level:
//
//   - DEBUG: request and storage traces (only shown in verbose mode)
//   - INFO: lifecycle messages such as the bound port
//   - WARN: recovered conditions such as a corrupt data file
//   - ERROR: failures; always written to stderr
//
// # Example Usage
//
//	log.Infof("API server running on http://localhost:%d", port)
//	log.Warnf("Failed to parse %s, using empty default: %v", file, err)
//
// Fatalf logs and terminates the process with exit status 1. Tests can
// replace the exit hook with SetExitFunc and the writers with SetOutput.
//
// The package keeps global state for simplicity; all writes are serialized
// so it is safe to use from concurrent request handlers.
package log
