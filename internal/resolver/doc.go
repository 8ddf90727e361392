// Package resolver implements the client used when the caller is a separate
// process from the gateway: gather credentials, round-trip a token request
// over the transport, and cache the returned token id locally for reuse.
//
// Responses without a token field are handed back verbatim rather than
// synthesized into errors, preserving backend-specific diagnostic payloads.
package resolver
