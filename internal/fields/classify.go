package fields

import (
	"regexp"
	"slices"
	"strings"
)

type rule struct {
	semantic SemanticType
	types    []string
	keywords *regexp.Regexp
}

// rules are checked in order; a haystack that matches several keyword sets
// gets the earliest type.
var rules = []rule{
	{TypeEmail, []string{"email"}, regexp.MustCompile(`email|e-mail|mail`)},
	{TypePassword, []string{"password"}, nil},
	{TypePhone, []string{"tel"}, regexp.MustCompile(`phone|tel|mobile|hp|whatsapp|wa`)},
	{TypeName, nil, regexp.MustCompile(`name|nama|full.?name|first.?name|last.?name|surname`)},
	{TypeAddress, nil, regexp.MustCompile(`address|alamat|street|jalan|kota|city|province|provinsi|postal|zip`)},
	{TypeDate, []string{"date", "datetime-local", "month", "week"}, regexp.MustCompile(`date|tanggal|birth|lahir|dob`)},
	{TypeNumber, []string{"number"}, regexp.MustCompile(`number|angka|umur|age|quantity|jumlah`)},
	{TypeURL, []string{"url"}, regexp.MustCompile(`url|website|link|site`)},
	{TypeCompany, nil, regexp.MustCompile(`company|perusahaan|organization|organisasi`)},
}

// Classify infers the semantic type of a descriptor from its name, id,
// placeholder, label and class name, plus its native input type.
func Classify(d Descriptor) SemanticType {
	return ClassifyHaystack(Haystack(d), d.Type)
}

// Haystack joins the classification signals into one lowercase string.
func Haystack(d Descriptor) string {
	return strings.ToLower(strings.Join([]string{d.Name, d.ID, d.Placeholder, d.Label, d.ClassName}, " "))
}

// ClassifyHaystack is the pure classification step.
func ClassifyHaystack(haystack, nativeType string) SemanticType {
	for _, r := range rules {
		if slices.Contains(r.types, nativeType) {
			return r.semantic
		}
		if r.keywords != nil && r.keywords.MatchString(haystack) {
			return r.semantic
		}
	}
	return TypeText
}
