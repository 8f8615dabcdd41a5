// Package definition loads application definition documents from disk.
// Documents are JSON, YAML, or TOML; entries in a document reference
// deferred modules (inline factories and instances only exist in code).
package definition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/appwire/appwire/pkg/app"
	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/identity"
)

// Document is the on-disk shape of a definition.
type Document struct {
	Actions        []Entry   `json:"actions,omitempty" yaml:"actions,omitempty" toml:"actions,omitempty"`
	Stores         []Entry   `json:"stores,omitempty" yaml:"stores,omitempty" toml:"stores,omitempty"`
	Widgets        []Entry   `json:"widgets,omitempty" yaml:"widgets,omitempty" toml:"widgets,omitempty"`
	CustomElements []Element `json:"customElements,omitempty" yaml:"customElements,omitempty" toml:"customElements,omitempty"`
}

// Entry is one action, store, or widget declaration.
type Entry struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Module    string            `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty"`
	Options   map[string]any    `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	State     map[string]any    `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	StateFrom string            `json:"stateFrom,omitempty" yaml:"stateFrom,omitempty" toml:"stateFrom,omitempty"`
	Listeners map[string]string `json:"listeners,omitempty" yaml:"listeners,omitempty" toml:"listeners,omitempty"`
}

// Element is one custom element declaration.
type Element struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Module string `json:"module" yaml:"module" toml:"module"`
}

// Load reads and parses a definition file, dispatching on the file
// extension (.json, .yaml, .yml, .toml).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDefinitionLoad, "could not read definition %s", path)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes a definition document in the given format ("json",
// "yaml", "yml", or "toml").
func Parse(data []byte, format string) (*Document, error) {
	var doc Document
	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrDefinitionParse, "invalid JSON definition")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrDefinitionParse, "invalid YAML definition")
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrDefinitionParse, "invalid TOML definition")
		}
	default:
		return nil, errors.Newf(errors.ErrDefinitionParse, "unsupported definition format %q", format)
	}
	return &doc, nil
}

// Definition converts the document into the batch shape the app loads.
func (d *Document) Definition() app.Definition {
	def := app.Definition{}

	for _, e := range d.Actions {
		def.Actions = append(def.Actions, app.ActionDefinition{
			ID:        optionalID(e.ID),
			Module:    e.Module,
			StateFrom: optionalRef(e.StateFrom),
			State:     e.State,
		})
	}
	for _, e := range d.Stores {
		def.Stores = append(def.Stores, app.StoreDefinition{
			ID:      optionalID(e.ID),
			Module:  e.Module,
			Options: e.Options,
		})
	}
	for _, e := range d.Widgets {
		def.Widgets = append(def.Widgets, app.WidgetDefinition{
			ID:        optionalID(e.ID),
			Module:    e.Module,
			Options:   e.Options,
			StateFrom: optionalRef(e.StateFrom),
			State:     e.State,
			Listeners: listeners(e.Listeners),
		})
	}
	for _, e := range d.CustomElements {
		def.CustomElements = append(def.CustomElements, app.CustomElementDefinition{
			Name:   e.Name,
			Module: e.Module,
		})
	}
	return def
}

// Counts returns the number of declared entries per kind, for reporting.
func (d *Document) Counts() (actions, stores, widgets, elements int) {
	return len(d.Actions), len(d.Stores), len(d.Widgets), len(d.CustomElements)
}

func optionalID(id string) identity.Identifier {
	if id == "" {
		return nil
	}
	return id
}

func optionalRef(ref string) any {
	if ref == "" {
		return nil
	}
	return ref
}

func listeners(m map[string]string) map[string]identity.Identifier {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]identity.Identifier, len(m))
	for event, id := range m {
		out[event] = id
	}
	return out
}
