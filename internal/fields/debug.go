package fields

import (
	"fmt"

	"github.com/v0xg/autofill/internal/dom"
)

const debugSampleSize = 5

// modalSelector matches common modal and overlay containers.
const modalSelector = `.modal, [role="dialog"], .popup, .overlay, .lightbox`

// debugSampleSelectors are the element kinds sampled by Debug.
var debugSampleSelectors = []string{
	`input[type="text"]`,
	`input[type="email"]`,
	`input[type="tel"]`,
	`input:not([type])`,
	"textarea",
	"select",
}

// DebugReport summarizes the form elements of a page.
type DebugReport struct {
	URL          string         `json:"url,omitempty"`
	Title        string         `json:"title,omitempty"`
	Inputs       int            `json:"inputs"`
	Textareas    int            `json:"textareas"`
	Selects      int            `json:"selects"`
	Modals       int            `json:"modals"`
	Disabled     int            `json:"disabled"`
	ReadOnly     int            `json:"readOnly"`
	InputTypes   map[string]int `json:"inputTypes"`
	SampleFields []DebugSample  `json:"sampleFields"`
	Analysis     Analysis       `json:"analysis"`
}

// DebugSample describes one sampled element.
type DebugSample struct {
	Selector    string `json:"selector"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Disabled    bool   `json:"disabled"`
	ReadOnly    bool   `json:"readOnly"`
	Visible     bool   `json:"visible"`
	OptionsInfo string `json:"optionsInfo,omitempty"`
}

// Total is the number of input, textarea and select elements on the page.
func (r DebugReport) Total() int {
	return r.Inputs + r.Textareas + r.Selects
}

// Debug inspects the whole document. The Analysis field is left for the
// caller to fill from an extraction.
func Debug(doc *dom.Document) DebugReport {
	sel := doc.Selection()
	r := DebugReport{
		Inputs:     sel.Find("input").Length(),
		Textareas:  sel.Find("textarea").Length(),
		Selects:    sel.Find("select").Length(),
		Modals:     sel.Find(modalSelector).Length(),
		InputTypes: map[string]int{},
	}
	if t := doc.FindAll("title"); len(t) > 0 {
		r.Title = t[0].Text()
	}

	for _, in := range doc.FindAll("input") {
		r.InputTypes[in.Type()]++
		if in.Disabled() {
			r.Disabled++
		}
		if in.ReadOnly() {
			r.ReadOnly++
		}
	}

	for _, s := range debugSampleSelectors {
		for _, el := range doc.FindAll(s) {
			if len(r.SampleFields) == debugSampleSize {
				return r
			}
			sample := DebugSample{
				Selector:    s,
				ID:          el.ID(),
				Name:        el.Name(),
				Type:        el.Type(),
				Placeholder: el.Placeholder(),
				Disabled:    el.Disabled(),
				ReadOnly:    el.ReadOnly(),
				Visible:     !el.Hidden(),
			}
			if el.Tag() == "select" {
				valid := 0
				for _, o := range el.Options() {
					if o.Value != "" && o.Value != "null" {
						valid++
					}
				}
				sample.OptionsInfo = fmt.Sprintf("(%d valid options)", valid)
			}
			r.SampleFields = append(r.SampleFields, sample)
		}
	}
	return r
}
