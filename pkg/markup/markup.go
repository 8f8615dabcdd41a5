// Package markup scans declarative markup for registration elements and
// turns them into a definition document. Scanning only collects
// declarations; widget construction happens later, through the app the
// definition is loaded into.
//
// Recognized elements, anywhere in the document:
//
//	<aw-action id="add" module="actions/add" state-from="notes"/>
//	<aw-store id="notes" module="stores/notes" data-options='{"capacity":100}'/>
//	<aw-widget id="list" module="widgets/list" state-from="notes"
//	           data-listeners='{"click":"add"}'/>
//	<aw-element name="aw-list" module="widgets/list"/>
package markup

import (
	"encoding/json"
	"io"
	"os"

	"github.com/beevik/etree"

	"github.com/appwire/appwire/pkg/definition"
	"github.com/appwire/appwire/pkg/errors"
)

const (
	tagAction  = "aw-action"
	tagStore   = "aw-store"
	tagWidget  = "aw-widget"
	tagElement = "aw-element"
)

// ScanFile scans a markup file.
func ScanFile(path string) (*definition.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMarkupParse, "could not read markup %s", path)
	}
	defer f.Close()
	return Scan(f)
}

// Scan parses markup from r and collects every registration element,
// in document order, into a definition document.
func Scan(r io.Reader) (*definition.Document, error) {
	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.ErrMarkupParse, "invalid markup")
	}

	doc := &definition.Document{}
	root := tree.Root()
	if root == nil {
		return doc, nil
	}
	if err := collect(root, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func collect(el *etree.Element, doc *definition.Document) error {
	switch el.Tag {
	case tagAction:
		entry, err := entryFrom(el)
		if err != nil {
			return err
		}
		doc.Actions = append(doc.Actions, entry)
	case tagStore:
		entry, err := entryFrom(el)
		if err != nil {
			return err
		}
		doc.Stores = append(doc.Stores, entry)
	case tagWidget:
		entry, err := entryFrom(el)
		if err != nil {
			return err
		}
		doc.Widgets = append(doc.Widgets, entry)
	case tagElement:
		doc.CustomElements = append(doc.CustomElements, definition.Element{
			Name:   el.SelectAttrValue("name", ""),
			Module: el.SelectAttrValue("module", ""),
		})
	}

	for _, child := range el.ChildElements() {
		if err := collect(child, doc); err != nil {
			return err
		}
	}
	return nil
}

func entryFrom(el *etree.Element) (definition.Entry, error) {
	entry := definition.Entry{
		ID:        el.SelectAttrValue("id", ""),
		Module:    el.SelectAttrValue("module", ""),
		StateFrom: el.SelectAttrValue("state-from", ""),
	}

	if raw := el.SelectAttrValue("data-options", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &entry.Options); err != nil {
			return entry, errors.Wrapf(err, errors.ErrMarkupParse,
				"<%s> has malformed data-options", el.Tag)
		}
	}
	if raw := el.SelectAttrValue("data-state", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &entry.State); err != nil {
			return entry, errors.Wrapf(err, errors.ErrMarkupParse,
				"<%s> has malformed data-state", el.Tag)
		}
	}
	if raw := el.SelectAttrValue("data-listeners", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &entry.Listeners); err != nil {
			return entry, errors.Wrapf(err, errors.ErrMarkupParse,
				"<%s> has malformed data-listeners", el.Tag)
		}
	}
	return entry, nil
}
