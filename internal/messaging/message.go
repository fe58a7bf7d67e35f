// Package messaging implements the request/response contract between a
// UI and the fill engine, and serves it over HTTP and websocket.
package messaging

import (
	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/picker"
)

// Action names an operation.
type Action string

const (
	ActionAnalyze        Action = "analyzeForm"
	ActionFill           Action = "fillForm"
	ActionClear          Action = "clearForm"
	ActionStartSelection Action = "startElementSelection"
	ActionStopSelection  Action = "stopElementSelection"
	ActionClearSelection Action = "clearSelectedElement"
	ActionGetSelection   Action = "getSelectedElement"
	ActionGenerate       Action = "generateFormData"
	ActionDebug          Action = "debugForm"
)

// Scope values.
const (
	ScopeDocument = "document"
	ScopeSelected = "selected"
)

// Request is one message from the UI.
type Request struct {
	ID     string              `json:"id,omitempty"`
	Action Action              `json:"action"`
	Scope  string              `json:"scope,omitempty"`
	Data   *fields.DataMap     `json:"data,omitempty"`
	Fields []fields.Descriptor `json:"fields,omitempty"`
}

// Response is the envelope returned for every request.
type Response struct {
	ID           string              `json:"id"`
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
	Fields       []fields.Descriptor `json:"fields,omitempty"`
	Data         *fields.DataMap     `json:"data,omitempty"`
	FilledCount  int                 `json:"filledCount,omitempty"`
	SkippedCount int                 `json:"skippedCount,omitempty"`
	FailedCount  int                 `json:"failedCount,omitempty"`
	ClearedCount int                 `json:"clearedCount,omitempty"`
	Selected     *picker.Selection   `json:"selected,omitempty"`
	Debug        *fields.DebugReport `json:"debug,omitempty"`
}
