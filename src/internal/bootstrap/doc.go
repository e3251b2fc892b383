// Package bootstrap binds the HTTP listener.
//
// The bind loop is a small state machine:
//
//	Idle -> Binding(n) -> Bound
//	                   -> Retrying(n) -> Binding(n+1)
//	                   -> Failed
//
// When the base port is taken on the first attempt, the machine asks a
// Reclaimer to terminate the process holding it and retries the same port.
// Every later "address in use" failure moves on to the next port. Any other
// bind error, or running out of attempts, ends in Failed.
//
// The machine never exits the process itself; the caller decides what a
// Failed outcome means.
package bootstrap
