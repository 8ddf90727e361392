// ABOUTME: Credential gathering for authentication backends
// ABOUTME: Fills a backend's declared parameters from caller data, config defaults, or prompts

package gather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openexec/authgate/internal/backend"
	"github.com/openexec/authgate/internal/config"
)

// ErrMissingParam is returned in non-interactive mode when a required
// parameter is not supplied and has no configured default.
var ErrMissingParam = errors.New("missing required parameter")

// secretPrefix marks parameter names whose values must never be echoed.
// Any parameter starting with "pass" (password, passphrase, ...) is prompted
// with a masked read.
const secretPrefix = "pass"

// Prompter supplies parameter values interactively.
type Prompter interface {
	// Prompt asks for a value with the given label.
	Prompt(label string) (string, error)
	// PromptSecret asks for a value without echoing the input.
	PromptSecret(label string) (string, error)
}

// Gatherer produces a complete parameter map for a backend's declared
// signature. It never invokes the backend.
type Gatherer struct {
	reg      *backend.Registry
	defaults config.BackendsConfig
	prompter Prompter // nil means non-interactive
}

// New creates a Gatherer. A nil prompter puts the gatherer in non-interactive
// mode: missing required parameters error out instead of prompting, and
// optional parameters fall back to their declared defaults unchanged.
func New(reg *backend.Registry, defaults config.BackendsConfig, prompter Prompter) *Gatherer {
	return &Gatherer{reg: reg, defaults: defaults, prompter: prompter}
}

// Gather resolves the named backend's parameter spec and fills it. Each
// required parameter is taken from supplied, then from the configured
// <backend>.<param> default, then (interactive mode only) from a prompt.
// Optional parameters additionally fall back to their declared defaults.
//
// The returned map is ready for invocation. If the backend is not registered,
// backend.ErrUnknownBackend is returned and no further work is done.
func (g *Gatherer) Gather(backendName string, supplied map[string]string) (map[string]string, error) {
	b, ok := g.reg.Resolve(backendName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", backend.ErrUnknownBackend, backendName)
	}
	spec := b.ParamSpec()

	params := make(map[string]string, len(spec.Required)+len(spec.Optional))

	for _, name := range spec.Required {
		if v, ok := supplied[name]; ok {
			params[name] = v
			continue
		}
		if v, ok := g.defaults.Default(backendName, name); ok {
			params[name] = v
			continue
		}
		if g.prompter == nil {
			return nil, fmt.Errorf("%w: %q for backend %q", ErrMissingParam, name, backendName)
		}
		v, err := g.promptFor(name)
		if err != nil {
			return nil, fmt.Errorf("prompting for %q: %w", name, err)
		}
		params[name] = v
	}

	for name, def := range spec.Optional {
		if v, ok := supplied[name]; ok {
			params[name] = v
			continue
		}
		if v, ok := g.defaults.Default(backendName, name); ok {
			params[name] = v
			continue
		}
		if g.prompter == nil {
			params[name] = def
			continue
		}
		v, err := g.prompter.Prompt(fmt.Sprintf("%s [%s]", name, def))
		if err != nil {
			return nil, fmt.Errorf("prompting for %q: %w", name, err)
		}
		if v == "" {
			v = def
		}
		params[name] = v
	}

	return params, nil
}

// promptFor picks the masked or plain prompt based on the parameter name.
func (g *Gatherer) promptFor(name string) (string, error) {
	if strings.HasPrefix(name, secretPrefix) {
		return g.prompter.PromptSecret(name)
	}
	return g.prompter.Prompt(name)
}
