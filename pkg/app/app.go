// Package app is the wiring layer for declarative applications built
// from actions, stores, and widgets. Entities are registered by
// instance, by factory, or by deferred module identifier, share one
// identifier namespace across the three kinds, and are resolved lazily
// at most once.
package app

import (
	"context"
	"regexp"
	"sync"

	"github.com/rs/zerolog"

	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/identity"
	"github.com/appwire/appwire/pkg/logging"
)

// App owns the three registration spaces, the custom element table, and
// the shared identifier arena. All methods are safe for concurrent use.
type App struct {
	mu    sync.Mutex
	arena map[identity.Identifier]Kind

	actions *space
	stores  *space
	widgets *space

	elements *identity.Registry[*CustomElement]

	resolver ModuleResolver
	log      zerolog.Logger
}

// Option configures an App.
type Option func(*App)

// WithModuleResolver installs the collaborator that turns module
// identifiers from definitions into factories.
func WithModuleResolver(r ModuleResolver) Option {
	return func(a *App) { a.resolver = r }
}

// WithLogger replaces the default component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// New creates an empty App.
func New(opts ...Option) *App {
	a := &App{
		arena:    make(map[identity.Identifier]Kind),
		actions:  newSpace(KindAction),
		stores:   newSpace(KindStore),
		widgets:  newSpace(KindWidget),
		elements: identity.NewRegistry[*CustomElement](),
		log:      logging.GetLogger("app"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterAction binds id to a concrete action. The action's Configure
// hook, if any, runs on the first GetAction.
func (a *App) RegisterAction(id identity.Identifier, action any) (*identity.Handle, error) {
	return a.register(a.actions, id, action)
}

// RegisterStore binds id to a concrete store.
func (a *App) RegisterStore(id identity.Identifier, store any) (*identity.Handle, error) {
	return a.register(a.stores, id, store)
}

// RegisterWidget binds id to a concrete widget.
func (a *App) RegisterWidget(id identity.Identifier, widget any) (*identity.Handle, error) {
	return a.register(a.widgets, id, widget)
}

// RegisterActionFactory binds id to a deferred action producer.
func (a *App) RegisterActionFactory(id identity.Identifier, factory Factory) (*identity.Handle, error) {
	if factory == nil {
		return nil, errors.New(errors.ErrInvalidInput, "nil factory")
	}
	return a.registerFactory(a.actions, id, a.bindFactory(id, factory, nil, nil, nil))
}

// RegisterStoreFactory binds id to a deferred store producer.
func (a *App) RegisterStoreFactory(id identity.Identifier, factory Factory) (*identity.Handle, error) {
	if factory == nil {
		return nil, errors.New(errors.ErrInvalidInput, "nil factory")
	}
	return a.registerFactory(a.stores, id, a.bindFactory(id, factory, nil, nil, nil))
}

// RegisterWidgetFactory binds id to a deferred widget producer.
func (a *App) RegisterWidgetFactory(id identity.Identifier, factory Factory) (*identity.Handle, error) {
	if factory == nil {
		return nil, errors.New(errors.ErrInvalidInput, "nil factory")
	}
	return a.registerFactory(a.widgets, id, a.bindFactory(id, factory, nil, nil, nil))
}

// GetAction resolves the action registered under id, invoking its
// factory and configure hook on first use.
func (a *App) GetAction(ctx context.Context, id identity.Identifier) (any, error) {
	return a.get(ctx, a.actions, id)
}

// GetStore resolves the store registered under id.
func (a *App) GetStore(ctx context.Context, id identity.Identifier) (any, error) {
	return a.get(ctx, a.stores, id)
}

// GetWidget resolves the widget registered under id.
func (a *App) GetWidget(ctx context.Context, id identity.Identifier) (any, error) {
	return a.get(ctx, a.widgets, id)
}

// HasAction reports whether id names an action registration, resolved
// or not.
func (a *App) HasAction(id identity.Identifier) bool { return a.has(a.actions, id) }

// HasStore reports whether id names a store registration.
func (a *App) HasStore(id identity.Identifier) bool { return a.has(a.stores, id) }

// HasWidget reports whether id names a widget registration.
func (a *App) HasWidget(id identity.Identifier) bool { return a.has(a.widgets, id) }

// IdentifyAction returns the identifier of a resolved action.
func (a *App) IdentifyAction(action any) (identity.Identifier, error) {
	return a.identify(a.actions, action)
}

// IdentifyStore returns the identifier of a resolved store.
func (a *App) IdentifyStore(store any) (identity.Identifier, error) {
	return a.identify(a.stores, store)
}

// IdentifyWidget returns the identifier of a resolved widget.
func (a *App) IdentifyWidget(widget any) (identity.Identifier, error) {
	return a.identify(a.widgets, widget)
}

// elementNameRe follows the custom element convention: lowercase, at
// least one hyphen.
var elementNameRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// ValidElementName reports whether name is a well-formed custom element
// name.
func ValidElementName(name string) bool {
	return elementNameRe.MatchString(name)
}

// RegisterCustomElement binds a markup element name to a widget factory.
func (a *App) RegisterCustomElement(name string, factory Factory) (*identity.Handle, error) {
	if !ValidElementName(name) {
		return nil, errors.Newf(errors.ErrElementName, "invalid custom element name: %q", name)
	}
	if factory == nil {
		return nil, errors.New(errors.ErrInvalidInput, "nil factory")
	}
	return a.elements.Register(name, &CustomElement{Name: name, Factory: factory})
}

// CustomElement returns the registration for a markup element name.
func (a *App) CustomElement(name string) (*CustomElement, error) {
	return a.elements.ByID(name)
}

// HasCustomElement reports whether the element name is registered.
func (a *App) HasCustomElement(name string) bool {
	return a.elements.HasID(name)
}

// Destroy removes every registration the app owns. Entities already
// handed out by Get calls stay usable; they just stop being
// discoverable.
func (a *App) Destroy() {
	a.mu.Lock()
	var handles []*identity.Handle
	for _, sp := range []*space{a.actions, a.stores, a.widgets} {
		for _, s := range sp.slots {
			handles = append(handles, s.handle)
		}
	}
	a.mu.Unlock()

	for _, h := range handles {
		h.Destroy()
	}
	for _, name := range a.elements.IDs() {
		a.elements.Delete(name)
	}
	a.log.Debug().Int("count", len(handles)).Msg("App destroyed")
}

// register binds id to a concrete entity. Registering the same
// (id, value) pair again is idempotent and returns the original handle.
func (a *App) register(sp *space, id identity.Identifier, value any) (*identity.Handle, error) {
	if !identity.Valid(id) {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid identifier: %v", id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := sp.slots[id]; ok && (s.state == stateInstance || s.state == stateResolved) && s.instance == value {
		return s.handle, nil
	}
	if existing, ok := a.arena[id]; ok {
		return nil, collisionError(sp.kind, existing, id)
	}
	if kind, boundID, found := a.identifyAnyLocked(value); found {
		return nil, errors.Newf(errors.ErrKindCollision,
			"Could not add %s, already registered as %s with identity %v", sp.kind, kind, boundID)
	}

	regHandle, err := sp.registry.Register(id, value)
	if err != nil {
		return nil, err
	}

	s := &slot{id: id, state: stateInstance, instance: value, regHandle: regHandle}
	s.handle = identity.NewHandle(func() { a.destroySlot(sp, s) })
	sp.slots[id] = s
	a.arena[id] = sp.kind

	a.log.Debug().Str("kind", string(sp.kind)).Interface("id", id).Msg("Registered instance")
	return s.handle, nil
}

// registerFactory stores an unexecuted producer. The identifier counts
// as present immediately, even though the entity does not exist yet.
func (a *App) registerFactory(sp *space, id identity.Identifier, produce func(ctx context.Context) (any, error)) (*identity.Handle, error) {
	if !identity.Valid(id) {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid identifier: %v", id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.arena[id]; ok {
		return nil, collisionError(sp.kind, existing, id)
	}

	s := &slot{id: id, state: statePending, factory: produce}
	s.handle = identity.NewHandle(func() { a.destroySlot(sp, s) })
	sp.slots[id] = s
	a.arena[id] = sp.kind

	a.log.Debug().Str("kind", string(sp.kind)).Interface("id", id).Msg("Registered factory")
	return s.handle, nil
}

// get drives the resolution state machine for one identifier.
func (a *App) get(ctx context.Context, sp *space, id identity.Identifier) (any, error) {
	a.mu.Lock()
	s, ok := sp.slots[id]
	if !ok {
		a.mu.Unlock()
		return nil, errors.Newf(errors.ErrNotFound, "no such %s: %v", sp.kind, id)
	}

	switch s.state {
	case stateResolved:
		v := s.instance
		a.mu.Unlock()
		return v, nil

	case stateFailed:
		err := s.err
		a.mu.Unlock()
		return nil, err

	case stateInstance:
		v := s.instance
		if sp.kind != KindAction || s.configured {
			a.mu.Unlock()
			return v, nil
		}
		// First GetAction on a directly registered action runs the
		// configure hook; racing calls wait for it.
		s.state = stateInFlight
		s.done = make(chan struct{})
		a.mu.Unlock()
		cfgErr := a.runConfigure(ctx, v)
		a.finishConfigure(s, v, cfgErr)
		return s.result, s.err

	case stateInFlight:
		done := s.done
		a.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
			return s.result, s.err
		}

	case statePending:
		s.state = stateInFlight
		s.done = make(chan struct{})
		produce := s.factory
		s.factory = nil
		a.mu.Unlock()

		value, err := produce(ctx)
		a.settle(ctx, sp, s, value, err)
		return s.result, s.err
	}

	a.mu.Unlock()
	return nil, errors.New(errors.ErrInternal, "corrupt resolution slot")
}

// settle commits (or discards) the outcome of a factory invocation and
// publishes it to every waiting Get call.
func (a *App) settle(ctx context.Context, sp *space, s *slot, value any, err error) {
	a.mu.Lock()

	if s.destroyed {
		// Handle was destroyed while the factory ran: the identifier is
		// gone and the entity is never committed. Callers that were
		// already waiting still receive the produced value.
		s.result, s.err = value, err
		close(s.done)
		a.mu.Unlock()
		a.log.Debug().Str("kind", string(sp.kind)).Interface("id", s.id).Msg("Discarded resolution for destroyed registration")
		return
	}

	if err != nil {
		s.err = err
		s.state = stateFailed
		close(s.done)
		a.mu.Unlock()
		return
	}

	if kind, boundID, found := a.identifyAnyLocked(value); found {
		s.err = errors.Newf(errors.ErrKindCollision,
			"Could not add %s, already registered as %s with identity %v", sp.kind, kind, boundID)
		s.state = stateFailed
		close(s.done)
		a.mu.Unlock()
		return
	}

	regHandle, rerr := sp.registry.Register(s.id, value)
	if rerr != nil {
		s.err = rerr
		s.state = stateFailed
		close(s.done)
		a.mu.Unlock()
		return
	}
	s.instance = value
	s.regHandle = regHandle

	if sp.kind != KindAction {
		s.state = stateResolved
		s.result = value
		close(s.done)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	// The action is committed before its hook runs, so the hook can see
	// it through the registry while wiring itself to others.
	cfgErr := a.runConfigure(ctx, value)
	a.finishConfigure(s, value, cfgErr)
}

// finishConfigure records the outcome of the configure hook. The hook
// never runs twice: a failure is memoized as the resolution error while
// the action stays committed.
func (a *App) finishConfigure(s *slot, value any, cfgErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s.configured = true
	if cfgErr != nil {
		s.err = cfgErr
		s.state = stateFailed
	} else {
		s.result = value
		s.state = stateResolved
	}
	close(s.done)
}

// runConfigure invokes the action's wiring hook, preferring Configure
// over the legacy Register.
func (a *App) runConfigure(ctx context.Context, action any) error {
	switch hook := action.(type) {
	case Configurable:
		return hook.Configure(ctx, a.Provider())
	case Registerable:
		return hook.Register(a.Provider())
	default:
		return nil
	}
}

// bindFactory wraps a public Factory with its registration-time options,
// resolving stateFrom and applying the state payload before the factory
// body runs.
func (a *App) bindFactory(id identity.Identifier, factory Factory, raw map[string]any, stateFrom any, state map[string]any) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		opts := Options{ID: id, Registry: a.Provider(), Raw: raw}
		if stateFrom != nil {
			store, err := a.resolveStateFrom(ctx, stateFrom)
			if err != nil {
				return nil, err
			}
			opts.Store = store
			if state != nil {
				if ss, ok := store.(StateStore); ok {
					if err := ss.Add(ctx, state); err != nil {
						a.log.Warn().Err(err).Interface("id", id).Msg("Could not add state to store")
					}
				} else {
					a.log.Warn().Interface("id", id).Msg("stateFrom store does not accept state")
				}
			}
		}
		return factory(ctx, opts)
	}
}

// bindModule defers factory lookup to the module resolver, so a
// module-backed registration resolves like any other factory.
func (a *App) bindModule(id identity.Identifier, module string, raw map[string]any, stateFrom any, state map[string]any) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		factory, err := a.resolver.Resolve(ctx, module)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrResolution, "could not resolve module %q", module)
		}
		return a.bindFactory(id, factory, raw, stateFrom, state)(ctx)
	}
}

// resolveStateFrom turns a stateFrom declaration into a store: string
// and Token values are looked up, anything else is taken as the store
// itself.
func (a *App) resolveStateFrom(ctx context.Context, stateFrom any) (any, error) {
	switch ref := stateFrom.(type) {
	case string:
		return a.GetStore(ctx, ref)
	case identity.Token:
		return a.GetStore(ctx, ref)
	default:
		return ref, nil
	}
}

// destroySlot removes one registration from every table. Safe to call
// repeatedly; only the slot currently bound to the identifier is
// removed.
func (a *App) destroySlot(sp *space, s *slot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur, ok := sp.slots[s.id]
	if !ok || cur != s {
		return
	}
	delete(sp.slots, s.id)
	delete(a.arena, s.id)
	if s.state == stateInFlight {
		s.destroyed = true
	}
	if s.regHandle != nil {
		sp.registry.Delete(s.id)
		s.regHandle = nil
	}
	a.log.Debug().Str("kind", string(sp.kind)).Interface("id", s.id).Msg("Destroyed registration")
}

func (a *App) has(sp *space, id identity.Identifier) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := sp.slots[id]
	return ok
}

func (a *App) identify(sp *space, value any) (identity.Identifier, error) {
	id, err := sp.registry.Identify(value)
	if err != nil {
		return nil, errors.Newf(errors.ErrNotIdentified, "Could not identify %s", sp.kind)
	}
	return id, nil
}

// identifyAnyLocked finds the kind and identifier a value is committed
// under, across all three spaces. Caller holds a.mu.
func (a *App) identifyAnyLocked(value any) (Kind, identity.Identifier, bool) {
	for _, sp := range []*space{a.actions, a.stores, a.widgets} {
		if id, err := sp.registry.Identify(value); err == nil {
			return sp.kind, id, true
		}
	}
	return "", nil, false
}

func collisionError(adding, existing Kind, id identity.Identifier) error {
	return errors.Newf(errors.ErrKindCollision,
		"Could not add %s, already registered as %s with identity %v", adding, existing, id)
}
