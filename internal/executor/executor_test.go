package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/autofill/internal/dom"
	"github.com/v0xg/autofill/internal/fields"
)

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestApplySelectExactText(t *testing.T) {
	doc := parse(t, `<select id="city"><option value="">Pilih</option><option value="jkt">Jakarta</option></select>`)
	sel := doc.ElementByID("city")

	require.NoError(t, NewWriter(NewSnapshotMutator()).Apply(context.Background(), sel, "Jakarta"))
	assert.Equal(t, "jkt", sel.Value())
}

func TestApplySelectSubstringAndMiss(t *testing.T) {
	doc := parse(t, `<select id="city">
		<option value="">Pilih kota</option>
		<option value="bdg">Kota Bandung</option>
		<option value="sby">Surabaya</option>
	</select>`)
	sel := doc.ElementByID("city")
	w := NewWriter(NewSnapshotMutator())
	ctx := context.Background()

	require.NoError(t, w.Apply(ctx, sel, "bandung"))
	assert.Equal(t, "bdg", sel.Value())

	require.NoError(t, w.Apply(ctx, sel, "Kota Surabaya Timur"))
	assert.Equal(t, "sby", sel.Value())

	require.NoError(t, w.Apply(ctx, sel, "Medan"))
	assert.Equal(t, "sby", sel.Value(), "unmatched value leaves the select unchanged")
}

func TestApplyCheckboxAndRadio(t *testing.T) {
	doc := parse(t, `<input type="checkbox" id="agree">
		<input type="radio" name="g" id="male" value="L">
		<input type="radio" name="g" id="female" value="P">`)
	w := NewWriter(NewSnapshotMutator())
	ctx := context.Background()

	agree := doc.ElementByID("agree")
	require.NoError(t, w.Apply(ctx, agree, "true"))
	assert.True(t, agree.Checked())
	require.NoError(t, w.Apply(ctx, agree, "0"))
	assert.False(t, agree.Checked())

	require.NoError(t, w.Apply(ctx, doc.ElementByID("male"), "P"))
	assert.False(t, doc.ElementByID("male").Checked())
	require.NoError(t, w.Apply(ctx, doc.ElementByID("female"), "P"))
	assert.True(t, doc.ElementByID("female").Checked())
}

func TestApplyRoundTripsTextLikeInputs(t *testing.T) {
	doc := parse(t, `<input id="a" type="email"><input id="b"><textarea id="c"></textarea><input id="d" type="date" maxlength="2">`)
	w := NewWriter(NewSnapshotMutator())

	values := map[string]string{
		"a": "a@b.com",
		"b": "  spaced  ",
		"c": "baris satu\nbaris dua",
		"d": "2024-01-31",
	}
	for id, v := range values {
		el := doc.ElementByID(id)
		require.NoError(t, w.Apply(context.Background(), el, v))
		assert.Equal(t, v, el.Value(), id)
	}
}

func TestApplyDispatchesEventsInOrder(t *testing.T) {
	doc := parse(t, `<input id="a">`)
	m := NewSnapshotMutator()

	require.NoError(t, NewWriter(m).Apply(context.Background(), doc.ElementByID("a"), "x"))

	var types []string
	for _, ev := range m.Events() {
		assert.Equal(t, "input#a", ev.Target)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"input", "change", "blur", "keyup", "keydown"}, types)
}

func TestClear(t *testing.T) {
	doc := parse(t, `<input id="t" value="isi">
		<input id="c" type="checkbox" checked>
		<select id="s"><option value="a">A</option><option value="b" selected>B</option></select>`)
	w := NewWriter(NewSnapshotMutator())
	ctx := context.Background()

	for _, id := range []string{"t", "c", "s"} {
		require.NoError(t, w.Clear(ctx, doc.ElementByID(id)))
	}
	assert.Equal(t, "", doc.ElementByID("t").Value())
	assert.False(t, doc.ElementByID("c").Checked())
	assert.Equal(t, 0, doc.ElementByID("s").SelectedIndex())
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"", "false", "0", " FALSE "} {
		assert.False(t, Truthy(v), v)
	}
	for _, v := range []string{"true", "1", "yes", "ya"} {
		assert.True(t, Truthy(v), v)
	}
}

type recordingObserver struct {
	written []string
}

func (r *recordingObserver) Written(_ context.Context, d fields.Descriptor, value string) {
	r.written = append(r.written, d.Name+"="+value)
}

func TestExecutorFillAndClear(t *testing.T) {
	doc := parse(t, `<form>
		<input name="email" type="email">
		<input name="nickname">
		<select name="kota"><option value="">Pilih</option><option value="jkt">Jakarta</option></select>
	</form>`)
	descs, _ := fields.NewExtractor(nil).Extract(doc, nil)
	require.Len(t, descs, 3)

	obs := &recordingObserver{}
	ex := New(NewSnapshotMutator(), nil, Options{}, obs)
	data := fields.DataMapOf("email", "sari@gmail.com", "kota", "Jakarta")

	res := ex.Fill(context.Background(), descs, data)
	assert.Equal(t, FillResult{Filled: 2, Skipped: 1}, res)
	assert.Equal(t, []string{"email=sari@gmail.com", "kota=Jakarta"}, obs.written)
	assert.Equal(t, "sari@gmail.com", doc.FindAll(`input[name="email"]`)[0].Value())
	assert.Equal(t, "jkt", doc.FindAll("select")[0].Value())

	assert.Equal(t, 3, ex.Clear(context.Background(), descs))
	assert.Equal(t, "", doc.FindAll(`input[name="email"]`)[0].Value())
	assert.Equal(t, "", doc.FindAll("select")[0].Value())
}

func TestExecutorFillCountsMissingElements(t *testing.T) {
	ex := New(NewSnapshotMutator(), nil, Options{})
	res := ex.Fill(context.Background(), []fields.Descriptor{{Name: "email", FieldType: fields.TypeEmail}}, fields.DataMapOf("email", "a@b.c"))
	assert.Equal(t, FillResult{Failed: 1}, res)
}
