// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord slash, CLI) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries what any command runner can pass: named option values
// and an opaque payload. Adapters set Data to their own context (for Discord,
// the session plus the interaction event).
type Invocation struct {
	Options map[string]string
	Data    any
}

// Option returns the value of a named option and whether it was supplied.
func (inv *Invocation) Option(name string) (string, bool) {
	if inv == nil || inv.Options == nil {
		return "", false
	}
	v, ok := inv.Options[name]
	return v, ok
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
