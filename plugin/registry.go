package plugin

import (
	"log/slog"
)

// builtins is the package-level list of plugin factories accumulated by
// RegisterFactory. Order follows registration (init) order.
var builtins []Factory

// RegisterFactory records a plugin factory for later discovery. Built-in
// plugin packages call it exactly once from init; the host triggers the
// init calls with blank imports and then passes Builtins() to Discover.
func RegisterFactory(f Factory) {
	builtins = append(builtins, f)
}

// Builtins returns all factories recorded by RegisterFactory, in
// registration order.
func Builtins() []Factory {
	out := make([]Factory, len(builtins))
	copy(out, builtins)
	return out
}

// Registry collects validated plugins and their preference declarations.
// It is built once during single-threaded startup and read-only afterwards,
// so it carries no locking. Names are not deduplicated: registering two
// plugins with the same name keeps both, and the later one's preferences
// win the merge.
type Registry struct {
	plugins     []Plugin
	preferences map[string]map[string]string
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		preferences: make(map[string]map[string]string),
	}
}

// Register invokes the factory, validates the resulting plugin, and appends
// it to the registry. Registration is all-or-nothing: a validation failure
// leaves the registry untouched and returns a *ValidationError.
func (r *Registry) Register(factory Factory) (Plugin, error) {
	p := factory()
	if p == nil {
		return nil, &ValidationError{Reason: "factory returned nil"}
	}
	name := p.Name()
	if name == "" {
		return nil, &ValidationError{Reason: "plugin name is empty"}
	}
	if p.Routes() == nil {
		return nil, &ValidationError{Name: name, Reason: "routes must return a route group"}
	}

	prefs := p.Preferences()
	r.plugins = append(r.plugins, p)
	if prefs != nil {
		r.preferences[name] = prefs
	}
	slog.Info("plugin registered", "name", name, "preferences", len(prefs))
	return p, nil
}

// Discover registers each factory in order and returns the accumulated
// plugins. The first validation failure aborts discovery; the caller is
// expected to treat that as a fatal boot error.
func (r *Registry) Discover(factories ...Factory) ([]Plugin, error) {
	for _, factory := range factories {
		if _, err := r.Register(factory); err != nil {
			return nil, err
		}
	}
	return r.Plugins(), nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Preferences returns the preference declarations of all registered plugins
// that have any, keyed by plugin name.
func (r *Registry) Preferences() map[string]map[string]string {
	out := make(map[string]map[string]string, len(r.preferences))
	for name, prefs := range r.preferences {
		cp := make(map[string]string, len(prefs))
		for k, v := range prefs {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}
