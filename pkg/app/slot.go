package app

import (
	"context"

	"github.com/appwire/appwire/pkg/identity"
)

// slotState tracks where a registration is in its life.
type slotState int

const (
	// stateInstance: bound directly to a concrete entity at registration.
	stateInstance slotState = iota
	// statePending: bound to a factory that has not been invoked yet.
	statePending
	// stateInFlight: factory invoked (or configure hook running), result
	// outstanding. All Get calls share the slot's done channel.
	stateInFlight
	// stateResolved: entity committed and, for actions, configured.
	stateResolved
	// stateFailed: resolution or configuration failed; the error is
	// memoized and the factory is never re-invoked.
	stateFailed
)

// slot is the per-identifier resolution record. All fields are guarded
// by the owning App's mutex, except that result and err become immutable
// once done is closed and may then be read without the lock.
type slot struct {
	id    identity.Identifier
	state slotState

	// instance is the committed entity (stateInstance, stateResolved,
	// and stateFailed after a configure error).
	instance any

	// factory is the unexecuted producer (statePending only).
	factory func(ctx context.Context) (any, error)

	// done is closed when an in-flight resolution settles.
	done chan struct{}

	// result and err are what settled Get calls observe.
	result any
	err    error

	// configured is set once the action hook has run, successfully or not.
	configured bool

	// destroyed marks a slot whose handle was destroyed while in flight.
	// Settlement then discards the produced entity instead of committing.
	destroyed bool

	// regHandle undoes the identity registry commit, when one happened.
	regHandle *identity.Handle

	// handle is the public registration handle issued for this slot.
	handle *identity.Handle
}

// space is one of the three per-kind tables: a slot per identifier plus
// the identity registry that committed entities live in.
type space struct {
	kind     Kind
	slots    map[identity.Identifier]*slot
	registry *identity.Registry[any]
}

func newSpace(kind Kind) *space {
	return &space{
		kind:     kind,
		slots:    make(map[identity.Identifier]*slot),
		registry: identity.NewRegistry[any](),
	}
}
