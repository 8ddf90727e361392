// Package backend defines the pluggable authentication mechanism interface
// and the registry that resolves mechanism names to implementations.
//
// # Backend Contract
//
// A backend declares its parameters through ParamSpec and verifies gathered
// credentials through Authenticate. The first required parameter always names
// the principal identity (by construction of every backend's signature); the
// rest of the system relies on this to extract the authenticated name without
// re-invoking the backend.
//
// # Registration
//
// Backends are registered explicitly at startup:
//
//	reg := backend.NewRegistry(logger)
//	reg.Register("static", backend.NewStatic(users))
//
// There is no runtime discovery or reflection; the registry is a plain map
// from name to implementation.
package backend
