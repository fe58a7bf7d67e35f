package fields

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/autofill/internal/dom"
)

// textInputTypes are the explicit input types treated as fillable, in the
// order their categories are visited.
var textInputTypes = []string{
	"text", "email", "tel", "url", "number", "password", "search",
	"date", "datetime-local", "time", "month", "week", "color",
}

// Category indexes after the typed inputs.
var (
	categoryUntyped  = len(textInputTypes)
	categoryTextarea = len(textInputTypes) + 1
	categorySelect   = len(textInputTypes) + 2
)

// Analysis counts what an extraction saw and why elements were dropped.
type Analysis struct {
	Candidates int `json:"candidates"`
	Disabled   int `json:"disabled"`
	ReadOnly   int `json:"readOnly"`
	Hidden     int `json:"hidden"`
	Collisions int `json:"collisions"`
	Fillable   int `json:"fillable"`
}

// Extractor finds fillable fields in a snapshot.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor that reports collisions to logger.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.Named("extractor")}
}

type candidate struct {
	el       *dom.Element
	category int
}

// Extract walks scope (the whole document when nil) and returns one
// descriptor per fillable element: typed text inputs first, then untyped
// inputs, textareas and selects, each category in document order.
func (x *Extractor) Extract(doc *dom.Document, scope *dom.Element) ([]Descriptor, Analysis) {
	var a Analysis

	var pool []*dom.Element
	if scope == nil {
		pool = doc.FindAll("input, textarea, select")
	} else {
		pool = scope.Find("input, textarea, select")
		if candidateCategory(scope) >= 0 {
			pool = append([]*dom.Element{scope}, pool...)
		}
	}

	var cands []candidate
	for _, el := range pool {
		if c := candidateCategory(el); c >= 0 {
			cands = append(cands, candidate{el: el, category: c})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int { return a.category - b.category })
	a.Candidates = len(cands)

	out := make([]Descriptor, 0, len(cands))
	for _, c := range cands {
		el := c.el
		switch {
		case el.Disabled():
			a.Disabled++
			continue
		case el.ReadOnly():
			a.ReadOnly++
			continue
		case el.Hidden():
			a.Hidden++
			continue
		}

		d := Describe(el)
		if !x.contained(doc, scope, d) {
			a.Collisions++
			continue
		}
		out = append(out, d)
	}
	a.Fillable = len(out)

	x.logger.Debug("extracted fields",
		zap.Int("candidates", a.Candidates),
		zap.Int("fillable", a.Fillable),
		zap.Int("collisions", a.Collisions),
	)
	return out, a
}

// contained re-resolves the descriptor's selector from the scope root, or
// the document when scope is nil. A selector that no longer resolves is a
// collision.
func (x *Extractor) contained(doc *dom.Document, scope *dom.Element, d Descriptor) bool {
	var (
		target *dom.Element
		err    error
	)
	if scope == nil {
		target, err = doc.QueryFirst(d.Selector)
	} else {
		target, err = scope.QueryFirst(d.Selector)
	}
	if err != nil || target == nil {
		x.logger.Warn("selector does not resolve, skipping field",
			zap.String("selector", d.Selector),
			zap.Error(err),
		)
		return false
	}
	if !target.Is(d.el) {
		x.logger.Debug("selector is ambiguous, writes use the element reference",
			zap.String("selector", d.Selector),
		)
	}
	return true
}

// Describe builds the descriptor for a single element.
func Describe(el *dom.Element) Descriptor {
	d := Descriptor{
		Selector:     GenerateSelector(el),
		Ref:          el.Ref(),
		ID:           el.ID(),
		Name:         el.Name(),
		Placeholder:  el.Placeholder(),
		Label:        ResolveLabel(el),
		Tag:          TagKind(el.Tag()),
		Type:         el.Type(),
		Required:     el.Required(),
		MaxLength:    el.MaxLength(),
		Pattern:      el.Pattern(),
		Autocomplete: el.Autocomplete(),
		ClassName:    el.ClassName(),
		Value:        el.Value(),
		Context:      fieldContext(el),
		el:           el,
	}
	d.FieldType = Classify(d)
	return d
}

// candidateCategory returns the visiting category of el, or -1 when el is
// not a fillable candidate.
func candidateCategory(el *dom.Element) int {
	switch el.Tag() {
	case "input":
		raw, ok := el.Attr("type")
		if !ok {
			return categoryUntyped
		}
		return slices.Index(textInputTypes, strings.ToLower(strings.TrimSpace(raw)))
	case "textarea":
		return categoryTextarea
	case "select":
		return categorySelect
	}
	return -1
}
