// Package gather fills a backend's declared parameter list before an
// authentication attempt.
//
// Values are sourced in order from caller-supplied data, configured
// <backend>.<param> defaults, and (in interactive mode) terminal prompts.
// Parameters whose names begin with "pass" are prompted with a masked,
// non-echoing read. Gathering never invokes the backend itself.
package gather
