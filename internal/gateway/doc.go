// Package gateway serves the token endpoint remote resolvers talk to.
//
// A single POST /v1/request route accepts the structured envelope with
// cmd mk_token (authenticate and issue) or get_token (validate by id).
// Failures of either kind answer an empty JSON object — the wire response
// carries no failure cause, matching the anti-enumeration posture of the
// authentication core.
package gateway
