// ABOUTME: Func adapter for registering plain functions as backends
// ABOUTME: Used for custom hooks and test doubles

package backend

import "context"

// Func adapts a plain function into a Backend with a declared parameter spec.
// Custom authentication hooks that don't warrant a full type register through
// this adapter.
type Func struct {
	Spec ParamSpec
	Fn   func(ctx context.Context, params map[string]string) (string, bool, error)
}

// ParamSpec returns the declared spec.
func (f Func) ParamSpec() ParamSpec { return f.Spec }

// Authenticate delegates to the wrapped function.
func (f Func) Authenticate(ctx context.Context, params map[string]string) (string, bool, error) {
	return f.Fn(ctx, params)
}
