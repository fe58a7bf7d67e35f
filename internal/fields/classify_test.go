package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want SemanticType
	}{
		{"email by type", Descriptor{Type: "email"}, TypeEmail},
		{"email by keyword", Descriptor{Name: "user_mail"}, TypeEmail},
		{"password", Descriptor{Name: "secret", Type: "password"}, TypePassword},
		{"phone by type", Descriptor{Type: "tel"}, TypePhone},
		{"phone by hp", Descriptor{Name: "no_hp"}, TypePhone},
		{"name", Descriptor{Label: "Full Name"}, TypeName},
		{"nama", Descriptor{Placeholder: "Nama lengkap"}, TypeName},
		{"address", Descriptor{ID: "alamat"}, TypeAddress},
		{"date by keyword", Descriptor{Name: "dob"}, TypeDate},
		{"date by type", Descriptor{Name: "x", Type: "month"}, TypeDate},
		{"number by type", Descriptor{Type: "number"}, TypeNumber},
		{"number by keyword", Descriptor{Name: "umur"}, TypeNumber},
		{"url", Descriptor{Label: "Website"}, TypeURL},
		{"company", Descriptor{ClassName: "input-perusahaan"}, TypeCompany},
		{"fallback", Descriptor{Name: "x"}, TypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.d))
		})
	}
}

func TestClassifyCheckOrder(t *testing.T) {
	// email is checked before phone
	assert.Equal(t, TypeEmail, Classify(Descriptor{Name: "email", Label: "phone"}))
	// a keyword hit on email beats the native password type
	assert.Equal(t, TypeEmail, Classify(Descriptor{Name: "mail_password", Type: "password"}))
	// phone before name
	assert.Equal(t, TypePhone, Classify(Descriptor{Name: "phone_name"}))
}

func TestClassifyIsPure(t *testing.T) {
	d := Descriptor{Name: "kota", ID: "city", Label: "Kota Asal", ClassName: "form-select"}
	first := Classify(d)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(d))
	}
	assert.Equal(t, ClassifyHaystack(Haystack(d), d.Type), first)
	assert.Equal(t, "kota city  kota asal form-select", Haystack(d))
}
