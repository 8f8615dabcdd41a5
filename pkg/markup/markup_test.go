package markup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appwire/appwire/pkg/app"
	"github.com/appwire/appwire/pkg/errors"
	"github.com/appwire/appwire/pkg/markup"
)

const page = `<html>
  <body>
    <aw-store id="notes" module="stores/notes" data-options='{"capacity":100}'/>
    <div class="toolbar">
      <aw-action id="add" module="actions/add" state-from="notes"
                 data-state='{"items":["a","b"]}'/>
    </div>
    <aw-widget id="list" module="widgets/list" state-from="notes"
               data-listeners='{"click":"add"}'/>
    <aw-element name="aw-list" module="widgets/list"/>
  </body>
</html>`

func TestScan(t *testing.T) {
	doc, err := markup.Scan(strings.NewReader(page))
	require.NoError(t, err)

	actions, stores, widgets, elements := doc.Counts()
	assert.Equal(t, 1, actions)
	assert.Equal(t, 1, stores)
	assert.Equal(t, 1, widgets)
	assert.Equal(t, 1, elements)

	store := doc.Stores[0]
	assert.Equal(t, "notes", store.ID)
	assert.Equal(t, "stores/notes", store.Module)
	assert.Equal(t, float64(100), store.Options["capacity"])

	action := doc.Actions[0]
	assert.Equal(t, "notes", action.StateFrom)
	assert.Equal(t, []any{"a", "b"}, action.State["items"])

	widget := doc.Widgets[0]
	assert.Equal(t, "add", widget.Listeners["click"])

	assert.Equal(t, "aw-list", doc.CustomElements[0].Name)
}

func TestScanNestedRegistrationElements(t *testing.T) {
	nested := `<aw-widget id="outer" module="widgets/panel">
  <aw-widget id="inner" module="widgets/label"/>
</aw-widget>`

	doc, err := markup.Scan(strings.NewReader(nested))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)
	assert.Equal(t, "outer", doc.Widgets[0].ID)
	assert.Equal(t, "inner", doc.Widgets[1].ID)
}

func TestScanErrors(t *testing.T) {
	t.Run("malformed markup", func(t *testing.T) {
		_, err := markup.Scan(strings.NewReader("<html><aw-store"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMarkupParse))
	})

	t.Run("malformed data attribute", func(t *testing.T) {
		_, err := markup.Scan(strings.NewReader(`<aw-store id="s" module="m" data-options='{bad'/>`))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMarkupParse))
		assert.Contains(t, err.Error(), "data-options")
	})

	t.Run("empty document", func(t *testing.T) {
		doc, err := markup.Scan(strings.NewReader(""))
		require.NoError(t, err)
		_, stores, _, _ := doc.Counts()
		assert.Equal(t, 0, stores)
	})
}

func TestScanFile(t *testing.T) {
	_, err := markup.ScanFile("testdata/does-not-exist.html")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMarkupParse))
}

func TestScannedDocumentLoadsIntoApp(t *testing.T) {
	doc, err := markup.Scan(strings.NewReader(page))
	require.NoError(t, err)

	resolver := app.ModuleResolverFunc(func(ctx context.Context, module string) (app.Factory, error) {
		return func(ctx context.Context, opts app.Options) (any, error) {
			return &struct{ module string }{module: module}, nil
		}, nil
	})

	a := app.New(app.WithModuleResolver(resolver))
	_, err = a.LoadDefinition(doc.Definition())
	require.NoError(t, err)

	assert.True(t, a.HasStore("notes"))
	assert.True(t, a.HasAction("add"))
	assert.True(t, a.HasWidget("list"))
	assert.True(t, a.HasCustomElement("aw-list"))

	_, err = a.GetWidget(context.Background(), "list")
	require.NoError(t, err)
}
