package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLayoutHidden(t *testing.T) {
	doc := mustParse(t, `<body>
		<input id="visible">
		<input id="display" style="display: none">
		<input id="visibility" style="visibility:hidden !important">
		<input id="opacity" style="opacity: 0">
		<input id="half" style="opacity: 0.5">
		<input id="attr" hidden>
		<div style="display:none"><input id="ancestor"></div>
		<div style="visibility:hidden"><input id="inherited"></div>
		<div style="visibility:hidden"><input id="override" style="visibility: visible"></div>
		<input id="typed" type="hidden">
		<input id="fixed" style="position:fixed">
	</body>`)

	hidden := []string{"display", "visibility", "opacity", "attr", "ancestor", "inherited", "typed"}
	shown := []string{"visible", "half", "override", "fixed"}

	for _, id := range hidden {
		el := doc.ElementByID(id)
		require.NotNil(t, el, id)
		assert.True(t, el.Hidden(), id)
	}
	for _, id := range shown {
		el := doc.ElementByID(id)
		require.NotNil(t, el, id)
		assert.False(t, el.Hidden(), id)
	}
}

func TestAnnotatedLayout(t *testing.T) {
	doc := mustParse(t, `
		<input id="ok" data-af-rendered="true" data-af-display="block" data-af-visibility="visible" data-af-opacity="1">
		<input id="gone" data-af-rendered="false" data-af-display="inline-block" data-af-visibility="visible" data-af-opacity="1">
		<input id="clear" data-af-rendered="true" data-af-display="block" data-af-visibility="visible" data-af-opacity="0">
		<input id="inline" style="display:none" data-af-rendered="true" data-af-display="block">`)

	assert.False(t, doc.ElementByID("ok").Hidden())
	assert.True(t, doc.ElementByID("gone").Hidden())
	assert.True(t, doc.ElementByID("clear").Hidden())
	// annotations take precedence over inline styles
	assert.False(t, doc.ElementByID("inline").Hidden())
}

func TestRect(t *testing.T) {
	doc := mustParse(t, `<input id="a" data-af-rect="10,20.5,300,40"><input id="b" data-af-rect="1,2"><input id="c">`)

	r, ok := doc.ElementByID("a").Rect()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 10, Y: 20.5, Width: 300, Height: 40}, r)

	_, ok = doc.ElementByID("b").Rect()
	assert.False(t, ok)
	_, ok = doc.ElementByID("c").Rect()
	assert.False(t, ok)
}
