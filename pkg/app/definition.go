package app

import (
	"context"

	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/identity"
)

// Definition is a batch of registrations loaded in one call. Entries may
// carry a concrete instance, an inline factory, or a deferred module
// identifier; exactly one of the three per entry.
type Definition struct {
	Actions        []ActionDefinition
	Stores         []StoreDefinition
	Widgets        []WidgetDefinition
	CustomElements []CustomElementDefinition
}

// ActionDefinition declares one action registration.
type ActionDefinition struct {
	// ID is optional; anonymous entries get a unique token.
	ID       identity.Identifier
	Instance any
	Factory  Factory
	Module   string

	// StateFrom names (or directly references) the store handed to the
	// factory. State, if set, is added to that store before the factory
	// runs.
	StateFrom any
	State     map[string]any
}

// StoreDefinition declares one store registration.
type StoreDefinition struct {
	ID       identity.Identifier
	Instance any
	Factory  Factory
	Module   string
	Options  map[string]any
}

// WidgetDefinition declares one widget registration.
type WidgetDefinition struct {
	ID       identity.Identifier
	Instance any
	Factory  Factory
	Module   string
	Options  map[string]any

	StateFrom any
	State     map[string]any

	// Listeners maps widget event names to action identifiers. The
	// wiring layer validates the shape; attaching the listeners is the
	// widget layer's concern.
	Listeners map[string]identity.Identifier
}

// CustomElementDefinition declares a markup element name backed by a
// widget factory or module.
type CustomElementDefinition struct {
	Name    string
	Factory Factory
	Module  string
}

// LoadDefinition registers every entry of the definition and returns a
// single handle whose Destroy removes exactly those registrations.
// Malformed entries fail here, synchronously, before anything is
// registered; a registration failure midway rolls back the entries
// already made.
func (a *App) LoadDefinition(def Definition) (*identity.Handle, error) {
	if err := a.validateDefinition(def); err != nil {
		return nil, err
	}

	var handles []*identity.Handle
	rollback := func() {
		for _, h := range handles {
			h.Destroy()
		}
	}

	add := func(h *identity.Handle, err error) error {
		if err != nil {
			rollback()
			return err
		}
		handles = append(handles, h)
		return nil
	}

	for _, entry := range def.Actions {
		id := orToken(entry.ID, "action")
		var (
			h   *identity.Handle
			err error
		)
		switch {
		case entry.Instance != nil:
			h, err = a.register(a.actions, id, entry.Instance)
		case entry.Factory != nil:
			h, err = a.registerFactory(a.actions, id,
				a.bindFactory(id, entry.Factory, nil, entry.StateFrom, entry.State))
		default:
			h, err = a.registerFactory(a.actions, id,
				a.bindModule(id, entry.Module, nil, entry.StateFrom, entry.State))
		}
		if err := add(h, err); err != nil {
			return nil, err
		}
	}

	for _, entry := range def.Stores {
		id := orToken(entry.ID, "store")
		var (
			h   *identity.Handle
			err error
		)
		switch {
		case entry.Instance != nil:
			h, err = a.register(a.stores, id, entry.Instance)
		case entry.Factory != nil:
			h, err = a.registerFactory(a.stores, id,
				a.bindFactory(id, entry.Factory, entry.Options, nil, nil))
		default:
			h, err = a.registerFactory(a.stores, id,
				a.bindModule(id, entry.Module, entry.Options, nil, nil))
		}
		if err := add(h, err); err != nil {
			return nil, err
		}
	}

	for _, entry := range def.Widgets {
		id := orToken(entry.ID, "widget")
		var (
			h   *identity.Handle
			err error
		)
		switch {
		case entry.Instance != nil:
			h, err = a.register(a.widgets, id, entry.Instance)
		case entry.Factory != nil:
			h, err = a.registerFactory(a.widgets, id,
				a.bindFactory(id, entry.Factory, entry.Options, entry.StateFrom, entry.State))
		default:
			h, err = a.registerFactory(a.widgets, id,
				a.bindModule(id, entry.Module, entry.Options, entry.StateFrom, entry.State))
		}
		if err := add(h, err); err != nil {
			return nil, err
		}
	}

	for _, entry := range def.CustomElements {
		factory := entry.Factory
		if factory == nil {
			factory = a.moduleElementFactory(entry.Name, entry.Module)
		}
		if err := add(a.RegisterCustomElement(entry.Name, factory)); err != nil {
			return nil, err
		}
	}

	a.log.Debug().
		Int("actions", len(def.Actions)).
		Int("stores", len(def.Stores)).
		Int("widgets", len(def.Widgets)).
		Int("customElements", len(def.CustomElements)).
		Msg("Definition loaded")

	return identity.NewHandle(rollback), nil
}

// validateDefinition surfaces malformed entries before any registration
// happens. These are programmer errors and are never deferred.
func (a *App) validateDefinition(def Definition) error {
	for i, entry := range def.Actions {
		if err := a.validateEntry(KindAction, i, entry.Instance, entry.Factory, entry.Module, nil); err != nil {
			return err
		}
		if entry.State != nil && entry.StateFrom == nil {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"action entry %d declares state without stateFrom", i)
		}
		if entry.Instance != nil && entry.StateFrom != nil {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"action entry %d declares stateFrom alongside an instance", i)
		}
	}
	for i, entry := range def.Stores {
		if err := a.validateEntry(KindStore, i, entry.Instance, entry.Factory, entry.Module, entry.Options); err != nil {
			return err
		}
	}
	for i, entry := range def.Widgets {
		if err := a.validateEntry(KindWidget, i, entry.Instance, entry.Factory, entry.Module, entry.Options); err != nil {
			return err
		}
		if entry.State != nil && entry.StateFrom == nil {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"widget entry %d declares state without stateFrom", i)
		}
		if entry.Instance != nil && entry.StateFrom != nil {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"widget entry %d declares stateFrom alongside an instance", i)
		}
	}
	for i, entry := range def.CustomElements {
		if !ValidElementName(entry.Name) {
			return errors.Newf(errors.ErrElementName,
				"custom element entry %d has invalid name %q", i, entry.Name)
		}
		if entry.Factory != nil && entry.Module != "" {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"custom element entry %d declares both factory and module", i)
		}
		if entry.Factory == nil && entry.Module == "" {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"custom element entry %d needs a factory or a module", i)
		}
		if entry.Module != "" && a.resolver == nil {
			return errors.Newf(errors.ErrDefinitionInvalid,
				"custom element entry %d references module %q but no module resolver is configured", i, entry.Module)
		}
	}
	return nil
}

func (a *App) validateEntry(kind Kind, i int, instance any, factory Factory, module string, options map[string]any) error {
	sources := 0
	if instance != nil {
		sources++
	}
	if factory != nil {
		sources++
	}
	if module != "" {
		sources++
	}
	if sources == 0 {
		return errors.Newf(errors.ErrDefinitionInvalid,
			"%s entry %d needs exactly one of instance, factory, or module", kind, i)
	}
	if sources > 1 {
		return errors.Newf(errors.ErrDefinitionInvalid,
			"%s entry %d declares more than one of instance, factory, and module", kind, i)
	}
	if instance != nil && options != nil {
		return errors.Newf(errors.ErrDefinitionInvalid,
			"%s entry %d declares options alongside an instance", kind, i)
	}
	if module != "" && a.resolver == nil {
		return errors.Newf(errors.ErrDefinitionInvalid,
			"%s entry %d references module %q but no module resolver is configured", kind, i, module)
	}
	return nil
}

// moduleElementFactory defers a custom element's factory lookup to the
// module resolver, mirroring bindModule.
func (a *App) moduleElementFactory(name, module string) Factory {
	return func(ctx context.Context, opts Options) (any, error) {
		factory, err := a.resolver.Resolve(ctx, module)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrResolution,
				"could not resolve module %q for element %q", module, name)
		}
		return factory(ctx, opts)
	}
}

// orToken returns id if it is set, otherwise mints an anonymous token
// labeled with the kind.
func orToken(id identity.Identifier, label string) identity.Identifier {
	if id == nil {
		return identity.NewToken(label)
	}
	return id
}
