package style

import (
	"fmt"
	"strings"

	"github.com/appwire/appwire/pkg/definition"
	"github.com/appwire/appwire/pkg/errors"
)

// Renderer defines the interface for rendering CLI output
type Renderer interface {
	RenderDocument(path string, doc *definition.Document) string
	RenderError(err error) string
}

// ForTerminal returns the terminal renderer when styled is true and the
// plain renderer otherwise.
func ForTerminal(styled bool) Renderer {
	if styled {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderDocument renders the entries of a definition document grouped
// by kind.
func (r *TerminalRenderer) RenderDocument(path string, doc *definition.Document) string {
	actions, stores, widgets, elements := doc.Counts()
	if actions+stores+widgets+elements == 0 {
		return MutedStyle.Render("No entries in " + path)
	}

	var result strings.Builder
	result.WriteString(TitleStyle.Render(path) + "\n")

	writeGroup(&result, ActionStyle.Render("actions"), doc.Actions)
	writeGroup(&result, StoreStyle.Render("stores"), doc.Stores)
	writeGroup(&result, WidgetStyle.Render("widgets"), doc.Widgets)

	if elements > 0 {
		result.WriteString(ElementStyle.Render("custom elements") + "\n")
		for _, e := range doc.CustomElements {
			line := fmt.Sprintf("%s %s", Bold(e.Name), PathStyle.Render(e.Module))
			result.WriteString(Indent(line, 1) + "\n")
		}
	}

	return strings.TrimRight(result.String(), "\n")
}

func writeGroup(result *strings.Builder, heading string, entries []definition.Entry) {
	if len(entries) == 0 {
		return
	}
	result.WriteString(heading + "\n")
	for _, e := range entries {
		result.WriteString(Indent(renderEntry(e), 1) + "\n")
	}
}

func renderEntry(e definition.Entry) string {
	id := e.ID
	if id == "" {
		id = MutedStyle.Render("(anonymous)")
	} else {
		id = Bold(id)
	}

	line := id
	if e.Module != "" {
		line += " " + PathStyle.Render(e.Module)
	}
	if e.StateFrom != "" {
		line += " " + MutedStyle.Render("state from "+e.StateFrom)
	}
	return line
}

// RenderError renders an error message
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s %s %s",
			ErrorIndicator,
			ErrorStyle.Render(string(code)),
			err.Error())
	}
	return fmt.Sprintf("%s %s", ErrorIndicator, err.Error())
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderDocument renders a plain entry listing
func (r *PlainRenderer) RenderDocument(path string, doc *definition.Document) string {
	actions, stores, widgets, elements := doc.Counts()
	if actions+stores+widgets+elements == 0 {
		return "No entries in " + path
	}

	var result strings.Builder
	result.WriteString(path + "\n")

	plainGroup(&result, "actions", doc.Actions)
	plainGroup(&result, "stores", doc.Stores)
	plainGroup(&result, "widgets", doc.Widgets)

	if elements > 0 {
		result.WriteString("custom elements:\n")
		for _, e := range doc.CustomElements {
			result.WriteString(fmt.Sprintf("  - %s (%s)\n", e.Name, e.Module))
		}
	}

	return strings.TrimRight(result.String(), "\n")
}

func plainGroup(result *strings.Builder, heading string, entries []definition.Entry) {
	if len(entries) == 0 {
		return
	}
	result.WriteString(heading + ":\n")
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = "(anonymous)"
		}
		if e.Module != "" {
			result.WriteString(fmt.Sprintf("  - %s (%s)\n", id, e.Module))
		} else {
			result.WriteString(fmt.Sprintf("  - %s\n", id))
		}
	}
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
