package app

import (
	"context"

	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/identity"
)

// RegistryProvider is the combined registry façade handed to factories
// and configure hooks. It spans the three registration spaces without
// exposing their tables.
type RegistryProvider interface {
	GetAction(ctx context.Context, id identity.Identifier) (any, error)
	GetStore(ctx context.Context, id identity.Identifier) (any, error)
	GetWidget(ctx context.Context, id identity.Identifier) (any, error)

	HasAction(id identity.Identifier) bool
	HasStore(id identity.Identifier) bool
	HasWidget(id identity.Identifier) bool

	IdentifyAction(action any) (identity.Identifier, error)
	IdentifyStore(store any) (identity.Identifier, error)
	IdentifyWidget(widget any) (identity.Identifier, error)

	// Get returns a single-space view by kind name: "actions", "stores",
	// or "widgets".
	Get(kind string) (View, error)
}

// View is a single registration space seen through the provider.
type View interface {
	Get(ctx context.Context, id identity.Identifier) (any, error)
	Has(id identity.Identifier) bool
	Identify(value any) (identity.Identifier, error)
}

// Provider returns the combined registry façade for this app.
func (a *App) Provider() RegistryProvider {
	return &provider{app: a}
}

type provider struct {
	app *App
}

func (p *provider) GetAction(ctx context.Context, id identity.Identifier) (any, error) {
	return p.app.GetAction(ctx, id)
}

func (p *provider) GetStore(ctx context.Context, id identity.Identifier) (any, error) {
	return p.app.GetStore(ctx, id)
}

func (p *provider) GetWidget(ctx context.Context, id identity.Identifier) (any, error) {
	return p.app.GetWidget(ctx, id)
}

func (p *provider) HasAction(id identity.Identifier) bool { return p.app.HasAction(id) }
func (p *provider) HasStore(id identity.Identifier) bool  { return p.app.HasStore(id) }
func (p *provider) HasWidget(id identity.Identifier) bool { return p.app.HasWidget(id) }

func (p *provider) IdentifyAction(action any) (identity.Identifier, error) {
	return p.app.IdentifyAction(action)
}

func (p *provider) IdentifyStore(store any) (identity.Identifier, error) {
	return p.app.IdentifyStore(store)
}

func (p *provider) IdentifyWidget(widget any) (identity.Identifier, error) {
	return p.app.IdentifyWidget(widget)
}

func (p *provider) Get(kind string) (View, error) {
	switch kind {
	case "actions":
		return &view{app: p.app, space: p.app.actions}, nil
	case "stores":
		return &view{app: p.app, space: p.app.stores}, nil
	case "widgets":
		return &view{app: p.app, space: p.app.widgets}, nil
	default:
		return nil, errors.Newf(errors.ErrNoSuchKind, "No such store: %s", kind)
	}
}

type view struct {
	app   *App
	space *space
}

func (v *view) Get(ctx context.Context, id identity.Identifier) (any, error) {
	return v.app.get(ctx, v.space, id)
}

func (v *view) Has(id identity.Identifier) bool {
	return v.app.has(v.space, id)
}

func (v *view) Identify(value any) (identity.Identifier, error) {
	return v.app.identify(v.space, value)
}
