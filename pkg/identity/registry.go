package identity

import (
	"reflect"
	"sync"

	"github.com/appwire/appwire/pkg/errors"
)

// Handle is the capability returned by every registration. Its only
// operation is Destroy, which removes the registration it was issued for.
// Destroy is safe to call any number of times; calls after the first are
// no-ops.
type Handle struct {
	once    sync.Once
	destroy func()
}

// NewHandle wraps a removal function in an idempotent Handle.
func NewHandle(destroy func()) *Handle {
	return &Handle{destroy: destroy}
}

// Destroy removes the underlying registration. Idempotent.
func (h *Handle) Destroy() {
	h.once.Do(func() {
		if h.destroy != nil {
			h.destroy()
		}
	})
}

// Registry is a thread-safe bidirectional map between identifiers and
// values. Every value is bound to exactly one identifier and vice versa;
// both directions are mutated in lockstep so no partial state is ever
// observable.
type Registry[T comparable] struct {
	mu      sync.RWMutex
	byID    map[Identifier]T
	byValue map[T]Identifier
	handles map[Identifier]*Handle
}

// NewRegistry creates an empty identity registry.
func NewRegistry[T comparable]() *Registry[T] {
	return &Registry[T]{
		byID:    make(map[Identifier]T),
		byValue: make(map[T]Identifier),
		handles: make(map[Identifier]*Handle),
	}
}

// hashableValue reports whether value can be used as a map key. When T
// is an interface type the dynamic type may be a map, slice, or func,
// which would panic on insertion into byValue.
func hashableValue[T comparable](value T) bool {
	t := reflect.TypeOf(value)
	if t == nil {
		return true
	}
	return t.Comparable()
}

// Register binds id to value and returns a Handle that removes the
// binding. Re-registering the same (id, value) pair is idempotent and
// returns the handle issued by the first call. Binding id to a different
// value fails with ErrDuplicateIdentifier; binding an already-registered
// value under a different id fails with ErrValueIdentified. Values whose
// dynamic type is not comparable are rejected with ErrInvalidInput.
func (r *Registry[T]) Register(id Identifier, value T) (*Handle, error) {
	if !Valid(id) {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid identifier: %v", id)
	}
	if !hashableValue(value) {
		return nil, errors.Newf(errors.ErrInvalidInput, "value of type %T cannot be identified", value)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[id]; ok {
		if existing == value {
			// Idempotent re-registration shares the original handle.
			return r.handles[id], nil
		}
		return nil, errors.Newf(errors.ErrDuplicateIdentifier,
			"identifier %v is already bound to a different value", id)
	}

	if boundID, ok := r.byValue[value]; ok {
		return nil, errors.Newf(errors.ErrValueIdentified,
			"value is already identified as %v", boundID)
	}

	r.byID[id] = value
	r.byValue[value] = id
	handle := NewHandle(func() { r.deleteBinding(id, value) })
	r.handles[id] = handle
	return handle, nil
}

// deleteBinding removes the binding for id only while it is still the
// one the handle was issued for. A stale handle whose id was deleted and
// rebound must not touch the new binding.
func (r *Registry[T]) deleteBinding(id Identifier, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok || cur != value {
		return
	}
	delete(r.byID, id)
	delete(r.byValue, cur)
	delete(r.handles, id)
}

// ByID returns the value bound to id, or ErrNotFound.
func (r *Registry[T]) ByID(id Identifier) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.byID[id]
	if !ok {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "no value registered with identity %v", id)
	}
	return value, nil
}

// Identify returns the identifier the value was registered under, or
// ErrNotIdentified if it was never registered.
func (r *Registry[T]) Identify(value T) (Identifier, error) {
	if !hashableValue(value) {
		return nil, errors.New(errors.ErrNotIdentified, "could not identify value")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byValue[value]
	if !ok {
		return nil, errors.New(errors.ErrNotIdentified, "could not identify value")
	}
	return id, nil
}

// Contains reports whether the value is registered.
func (r *Registry[T]) Contains(value T) bool {
	if !hashableValue(value) {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byValue[value]
	return ok
}

// HasID reports whether id is bound.
func (r *Registry[T]) HasID(id Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok
}

// Delete removes the binding for id in both directions and reports
// whether anything was removed.
func (r *Registry[T]) Delete(id Identifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byValue, value)
	delete(r.handles, id)
	return true
}

// IDs returns a snapshot of every bound identifier (order unspecified).
func (r *Registry[T]) IDs() []Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]Identifier, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live bindings.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
