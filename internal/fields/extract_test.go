package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/v0xg/autofill/internal/dom"
)

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return doc
}

func names(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

const registrationForm = `<html><body><form>
	<select name="city"><option>Jakarta</option></select>
	<textarea name="bio"></textarea>
	<input name="plain">
	<input type="email" name="mail">
	<input type="text" name="first">
	<input type="checkbox" name="agree">
	<input type="hidden" name="token">
	<input type="text" name="dis" disabled>
	<input type="text" name="ro" readonly>
	<input type="text" name="hid" style="display:none">
	<div style="display:none"><input name="inner"></div>
	<input type="text" name="ghost" style="opacity:0">
	<input type="submit">
</form></body></html>`

func TestExtractOrderAndExclusions(t *testing.T) {
	doc := parse(t, registrationForm)

	got, analysis := NewExtractor(nil).Extract(doc, nil)

	assert.Equal(t, []string{"first", "mail", "plain", "bio", "city"}, names(got))
	assert.Equal(t, Analysis{
		Candidates: 10,
		Disabled:   1,
		ReadOnly:   1,
		Hidden:     3,
		Fillable:   5,
	}, analysis)
}

func TestExtractNeverReturnsUnfillable(t *testing.T) {
	doc := parse(t, registrationForm)
	got, _ := NewExtractor(nil).Extract(doc, nil)

	for _, d := range got {
		el := d.Element()
		require.NotNil(t, el)
		assert.False(t, el.Disabled(), d.Name)
		assert.False(t, el.ReadOnly(), d.Name)
		assert.False(t, el.Hidden(), d.Name)
	}
}

func TestExtractDescriptorFields(t *testing.T) {
	doc := parse(t, `<form>
		<label for="email">Alamat Email</label>
		<input id="email" type="email" name="user_email" placeholder="you@example.com" required maxlength="64" class="form-control" autocomplete="email" value="old@x.id">
		<div>Telepon <input name="phone" type="tel" pattern="[0-9]+"></div>
	</form>`)

	got, _ := NewExtractor(nil).Extract(doc, nil)
	require.Len(t, got, 2)

	email := got[0]
	assert.Equal(t, "#email", email.Selector)
	assert.Equal(t, "user_email", email.Name)
	assert.Equal(t, "Alamat Email", email.Label)
	assert.Equal(t, TagInput, email.Tag)
	assert.Equal(t, "email", email.Type)
	assert.True(t, email.Required)
	require.NotNil(t, email.MaxLength)
	assert.Equal(t, 64, *email.MaxLength)
	assert.Equal(t, "form-control", email.ClassName)
	assert.Equal(t, "email", email.Autocomplete)
	assert.Equal(t, "old@x.id", email.Value)
	assert.Equal(t, TypeEmail, email.FieldType)

	phone := got[1]
	assert.Equal(t, `input[name="phone"]`, phone.Selector)
	assert.Equal(t, "[0-9]+", phone.Pattern)
	assert.Equal(t, "Telepon", phone.Context)
	assert.Nil(t, phone.MaxLength)
	assert.Equal(t, TypePhone, phone.FieldType)
}

func TestExtractScopedToElement(t *testing.T) {
	doc := parse(t, `<body>
		<input name="outside">
		<div id="scope"><input name="a"><textarea name="b"></textarea></div>
	</body>`)

	got, _ := NewExtractor(nil).Extract(doc, doc.ElementByID("scope"))
	assert.Equal(t, []string{"a", "b"}, names(got))
}

func TestExtractScopeIsItselfAField(t *testing.T) {
	doc := parse(t, `<input id="solo" name="solo"><input name="other">`)

	got, _ := NewExtractor(nil).Extract(doc, doc.ElementByID("solo"))
	assert.Equal(t, []string{"solo"}, names(got))
}

func TestExtractDuplicateIDOutsideScopeResolvesFromScope(t *testing.T) {
	doc := parse(t, `<body>
		<input id="x" name="outer">
		<div id="scope"><input id="x" name="inner"></div>
	</body>`)
	core, logs := observer.New(zapcore.WarnLevel)

	got, analysis := NewExtractor(zap.New(core)).Extract(doc, doc.ElementByID("scope"))

	require.Len(t, got, 1)
	assert.Equal(t, "inner", got[0].Name)
	assert.Equal(t, "#x", got[0].Selector)
	assert.Zero(t, analysis.Collisions)
	assert.Zero(t, logs.Len())
}

func TestExtractSharedClassAcrossFormsIsScoped(t *testing.T) {
	doc := parse(t, `<body>
		<form id="login"><input class="form-control"></form>
		<form id="signup"><input class="form-control"></form>
	</body>`)
	signup := doc.ElementByID("signup")

	got, analysis := NewExtractor(nil).Extract(doc, signup)

	require.Len(t, got, 1)
	assert.Equal(t, "input.form-control", got[0].Selector)
	assert.Zero(t, analysis.Collisions)
	assert.True(t, signup.Contains(got[0].Element()))
}

func TestExtractDuplicateIDInsideScopeIsKept(t *testing.T) {
	doc := parse(t, `<body>
		<div id="scope"><input id="x" name="inner"></div>
		<input id="x" name="outer">
	</body>`)

	got, analysis := NewExtractor(nil).Extract(doc, doc.ElementByID("scope"))

	require.Len(t, got, 1)
	assert.Equal(t, "inner", got[0].Name)
	assert.Zero(t, analysis.Collisions)
	assert.True(t, doc.ElementByID("scope").Contains(got[0].Element()))
}

func TestExtractEmptyScope(t *testing.T) {
	doc := parse(t, `<div id="scope"><p>nothing here</p></div>`)

	got, analysis := NewExtractor(nil).Extract(doc, doc.ElementByID("scope"))
	assert.Empty(t, got)
	assert.Zero(t, analysis.Fillable)
}

func TestExtractUsesLiveAnnotations(t *testing.T) {
	doc := parse(t, `<body>
		<input name="shown" data-af-uid="1" data-af-rendered="true" data-af-display="block" data-af-visibility="visible" data-af-opacity="1">
		<input name="modal" data-af-uid="2" data-af-rendered="false" data-af-display="block" data-af-visibility="visible" data-af-opacity="1">
		<input name="locked" data-af-uid="3" data-af-rendered="true" data-af-display="block" data-af-visibility="visible" data-af-opacity="1" data-af-readonly="true">
	</body>`)

	got, _ := NewExtractor(nil).Extract(doc, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0].Name)
	assert.Equal(t, "1", got[0].Ref)
}

func TestDebugReport(t *testing.T) {
	doc := parse(t, `<html><head><title>Daftar</title></head><body>
		<div class="modal"><input type="email" name="m"></div>
		<input name="a" disabled>
		<input name="b" readonly>
		<input type="checkbox" name="c">
		<textarea name="d"></textarea>
		<select name="e"><option value="">Pilih</option><option value="1">Satu</option></select>
	</body></html>`)

	r := Debug(doc)
	assert.Equal(t, "Daftar", r.Title)
	assert.Equal(t, 4, r.Inputs)
	assert.Equal(t, 1, r.Textareas)
	assert.Equal(t, 1, r.Selects)
	assert.Equal(t, 6, r.Total())
	assert.Equal(t, 1, r.Modals)
	assert.Equal(t, 1, r.Disabled)
	assert.Equal(t, 1, r.ReadOnly)
	assert.Equal(t, map[string]int{"email": 1, "text": 2, "checkbox": 1}, r.InputTypes)

	require.Len(t, r.SampleFields, 5)
	assert.Equal(t, `input[type="email"]`, r.SampleFields[0].Selector)
	assert.Equal(t, "(1 valid options)", r.SampleFields[4].OptionsInfo)
}
