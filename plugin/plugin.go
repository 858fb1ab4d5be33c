// Package plugin defines the Plugin interface and the registry that collects
// route-group extensions at startup.
//
// Plugins self-register by calling RegisterFactory from an init function and
// are pulled in by a blank import from the server entry point (e.g.
// _ "github.com/docsift/docsift/internal/plugins/whois"). The host builds a
// Registry once at boot and calls Discover with the accumulated factories;
// each accepted plugin's route group is then mounted by the HTTP layer.
package plugin

import (
	"fmt"

	"github.com/go-chi/chi/v5"
)

// Plugin is the interface all plugins must implement.
//
// Name must be non-empty and stable: it keys the plugin's preferences and
// its mount point. Routes must return a non-nil route group; a plugin that
// exposes no routes has no reason to exist. Preferences describes the
// operator-tunable options the plugin accepts, mapping each preference key
// to its expected value type ("string", "int", "bool"); plugins without
// options return nil.
type Plugin interface {
	Name() string
	Routes() chi.Router
	Preferences() map[string]string
}

// Factory constructs a plugin instance. It takes no arguments so that
// registration at import time carries no configuration dependencies.
type Factory func() Plugin

// ValidationError reports a plugin that failed contract validation during
// registration. It is fatal at startup: the host should refuse to boot
// rather than run with a half-registered plugin.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cannot register plugin: %s", e.Reason)
	}
	return fmt.Sprintf("cannot register plugin %q: %s", e.Name, e.Reason)
}
