package app

import (
	"context"

	"github.com/appwire/appwire/pkg/identity"
)

// Kind names one of the three registration spaces. All three share a
// single identifier namespace: an identifier bound in one space cannot
// be reused in another while the binding is live.
type Kind string

const (
	KindAction Kind = "action"
	KindStore  Kind = "store"
	KindWidget Kind = "widget"
)

// Factory lazily produces an entity. A factory registered under an
// identifier is invoked at most once, no matter how many Get calls race
// before it settles. It may fail by returning an error; the failure is
// memoized and later Get calls for the identifier return the same error
// without re-invoking the factory.
type Factory func(ctx context.Context, opts Options) (any, error)

// Options is the payload handed to a factory when it is invoked.
type Options struct {
	// ID is the identifier the produced entity will be committed under.
	ID identity.Identifier

	// Registry is the combined registry façade, usable for resolving
	// other actions, stores, and widgets during construction.
	Registry RegistryProvider

	// Store is the resolved stateFrom store, when the registration
	// declared one.
	Store any

	// Raw carries the options payload from the definition entry, if any.
	Raw map[string]any
}

// Configurable is implemented by actions that take part in wiring. The
// hook runs exactly once per action, when the action is first resolved
// through GetAction; GetAction does not return until the hook has. A
// hook error becomes the memoized resolution error, but the hook is
// never invoked a second time.
type Configurable interface {
	Configure(ctx context.Context, registry RegistryProvider) error
}

// Registerable is the legacy wiring hook, consulted only when the action
// does not implement Configurable.
type Registerable interface {
	Register(registry RegistryProvider) error
}

// StateStore receives state payloads declared alongside action and
// widget definitions. The payload is added before the entry's factory
// runs; an Add failure is logged and does not block the factory.
type StateStore interface {
	Add(ctx context.Context, state map[string]any) error
}

// ModuleResolver turns a deferred module identifier into a factory.
// Loader specifics stay behind this interface; the wiring layer calls
// through it at first Get, so a module-backed registration behaves
// exactly like a factory-backed one.
type ModuleResolver interface {
	Resolve(ctx context.Context, module string) (Factory, error)
}

// ModuleResolverFunc adapts a function to the ModuleResolver interface.
type ModuleResolverFunc func(ctx context.Context, module string) (Factory, error)

// Resolve implements ModuleResolver.
func (f ModuleResolverFunc) Resolve(ctx context.Context, module string) (Factory, error) {
	return f(ctx, module)
}

// CustomElement binds a markup element name to the widget factory that
// realizes it.
type CustomElement struct {
	Name    string
	Factory Factory
}
