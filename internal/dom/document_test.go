package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestQueryFirstReturnsFirstInDocumentOrder(t *testing.T) {
	doc := mustParse(t, `<div id="a"><input id="x" name="one"></div><div id="b"><input id="x" name="two"></div>`)

	el, err := doc.QueryFirst("#x")
	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "one", el.Name())

	none, err := doc.QueryFirst("#missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = doc.QueryFirst("input[")
	assert.Error(t, err)
}

func TestElementQueryFirstSearchesFromElement(t *testing.T) {
	doc := mustParse(t, `<div id="a"><input class="c" name="one"></div><div id="b"><input class="c" name="two"></div>`)

	el, err := doc.ElementByID("b").QueryFirst("input.c")
	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "two", el.Name())

	self, err := doc.ElementByID("b").QueryFirst("#b")
	require.NoError(t, err)
	assert.True(t, self.Is(doc.ElementByID("b")))

	none, err := doc.ElementByID("a").QueryFirst("#b")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = doc.ElementByID("a").QueryFirst("input[")
	assert.Error(t, err)
}

func TestElementByIDAndRef(t *testing.T) {
	doc := mustParse(t, `<input id="email" data-af-uid="7">`)

	el := doc.ElementByID("email")
	require.NotNil(t, el)
	assert.Equal(t, "7", el.Ref())
	assert.True(t, el.Is(doc.ByRef("7")))
	assert.Nil(t, doc.ByRef("8"))
	assert.Nil(t, doc.ElementByID(""))
}

func TestElementTypeMirrorsDOMProperty(t *testing.T) {
	doc := mustParse(t, `<input id="a"><input id="b" type="EMAIL"><textarea id="c"></textarea>
		<select id="d"></select><select id="e" multiple></select>`)

	cases := map[string]string{
		"a": "text",
		"b": "email",
		"c": "textarea",
		"d": "select-one",
		"e": "select-multiple",
	}
	for id, want := range cases {
		assert.Equal(t, want, doc.ElementByID(id).Type(), id)
	}
}

func TestMaxLength(t *testing.T) {
	doc := mustParse(t, `<input id="a" maxlength="12"><input id="b" maxlength="0"><input id="c" maxlength="x"><input id="d">`)

	require.NotNil(t, doc.ElementByID("a").MaxLength())
	assert.Equal(t, 12, *doc.ElementByID("a").MaxLength())
	assert.Nil(t, doc.ElementByID("b").MaxLength())
	assert.Nil(t, doc.ElementByID("c").MaxLength())
	assert.Nil(t, doc.ElementByID("d").MaxLength())
}

func TestDisabledAndReadOnly(t *testing.T) {
	doc := mustParse(t, `<input id="a" disabled><input id="b" readonly><select id="c" readonly></select>
		<input id="d" disabled data-af-disabled="false">`)

	assert.True(t, doc.ElementByID("a").Disabled())
	assert.True(t, doc.ElementByID("b").ReadOnly())
	assert.False(t, doc.ElementByID("c").ReadOnly())
	assert.False(t, doc.ElementByID("d").Disabled())
}

func TestSelectState(t *testing.T) {
	doc := mustParse(t, `<select id="city">
		<option value="">Pilih</option>
		<option value="jkt">Jakarta</option>
		<option> Bandung  Barat </option>
	</select>`)
	sel := doc.ElementByID("city")

	opts := sel.Options()
	require.Len(t, opts, 3)
	assert.Equal(t, "jkt", opts[1].Value)
	assert.Equal(t, "Jakarta", opts[1].Text)
	assert.Equal(t, "Bandung Barat", opts[2].Value)

	assert.Equal(t, 0, sel.SelectedIndex())
	assert.Equal(t, "", sel.Value())

	sel.SelectIndex(1)
	assert.Equal(t, 1, sel.SelectedIndex())
	assert.Equal(t, "jkt", sel.Value())
}

func TestSetValueAndChecked(t *testing.T) {
	doc := mustParse(t, `<input id="a" value="old"><textarea id="b">old</textarea><input id="c" type="checkbox" checked>`)

	a := doc.ElementByID("a")
	assert.Equal(t, "old", a.Value())
	a.SetValue("new")
	assert.Equal(t, "new", a.Value())

	b := doc.ElementByID("b")
	assert.Equal(t, "old", b.Value())
	b.SetValue("line")
	assert.Equal(t, "line", b.Value())
	assert.Equal(t, "line", b.Text())

	c := doc.ElementByID("c")
	assert.True(t, c.Checked())
	c.SetChecked(false)
	assert.False(t, c.Checked())
}

func TestTraversal(t *testing.T) {
	doc := mustParse(t, `<form id="f"><label id="l">Name <input id="n"></label><span id="s">x</span><p id="p">y</p></form>`)

	n := doc.ElementByID("n")
	assert.Equal(t, "l", n.Closest("label").ID())
	assert.Equal(t, "f", n.Closest("form").ID())
	assert.True(t, doc.ElementByID("f").Contains(n))
	assert.False(t, n.Contains(doc.ElementByID("f")))

	prev := doc.ElementByID("p").PrevSiblings()
	require.Len(t, prev, 2)
	assert.Equal(t, "s", prev[0].ID())
	assert.Equal(t, "l", prev[1].ID())

	assert.Equal(t, "Name", doc.ElementByID("l").ChildText())
}

func TestAnnotated(t *testing.T) {
	assert.False(t, mustParse(t, `<input>`).Annotated())
	assert.True(t, mustParse(t, `<input data-af-rendered="true">`).Annotated())
}
