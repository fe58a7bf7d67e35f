package fields

import "github.com/v0xg/autofill/internal/dom"

// SemanticType is the inferred content category of a field.
type SemanticType string

const (
	TypeEmail    SemanticType = "email"
	TypePassword SemanticType = "password"
	TypePhone    SemanticType = "phone"
	TypeName     SemanticType = "name"
	TypeAddress  SemanticType = "address"
	TypeDate     SemanticType = "date"
	TypeNumber   SemanticType = "number"
	TypeURL      SemanticType = "url"
	TypeCompany  SemanticType = "company"
	TypeText     SemanticType = "text"
)

// TagKind is the element kind of a fillable field.
type TagKind string

const (
	TagInput    TagKind = "input"
	TagTextarea TagKind = "textarea"
	TagSelect   TagKind = "select"
)

// Descriptor describes one detected fillable element
type Descriptor struct {
	Selector     string       `json:"selector"`
	Ref          string       `json:"ref,omitempty"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Placeholder  string       `json:"placeholder"`
	Label        string       `json:"label"`
	Tag          TagKind      `json:"tag"`
	Type         string       `json:"type"`
	Required     bool         `json:"required"`
	MaxLength    *int         `json:"maxLength,omitempty"`
	Pattern      string       `json:"pattern,omitempty"`
	Autocomplete string       `json:"autocomplete,omitempty"`
	ClassName    string       `json:"className,omitempty"`
	Value        string       `json:"value,omitempty"`
	Context      string       `json:"context,omitempty"`
	FieldType    SemanticType `json:"fieldType"`

	el *dom.Element
}

// Element returns the snapshot element the descriptor was extracted from.
// It is nil for descriptors decoded from JSON.
func (d Descriptor) Element() *dom.Element { return d.el }

// Identifiers returns the non-empty identity signals in matching order:
// name, id, placeholder, label.
func (d Descriptor) Identifiers() []string {
	var ids []string
	for _, s := range []string{d.Name, d.ID, d.Placeholder, d.Label} {
		if s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}
