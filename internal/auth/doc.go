// Package auth invokes pluggable authentication backends behind a timing
// side-channel defense.
//
// # Failure Normalization
//
// An attacker who can measure response latency can tell a backend that fails
// fast (unknown user) from one that fails slow (wrong password after a real
// directory lookup). To remove that signal, every failed attempt is held
// until a randomized target delay has elapsed. The target is drawn uniformly
// within ±25% of a process-wide ceiling that starts at a floor (one second by
// default) and rises to the slowest failure ever observed, so the defense
// adapts to naturally slow backends instead of guessing a fixed number.
//
// Malformed requests — missing backend name, unregistered backend — run
// through the same delay path. Only the operator log distinguishes causes.
//
// Successful attempts return immediately; padding them would add latency
// without hiding anything, since the response itself reveals success.
package auth
