package diagnostics

import (
	"encoding/json"
	"errors"
)

// Report is the structured error type every optimizer phase raises
// through: a stable code, the phase that raised it, a human-readable
// message, and whatever structured data helps explain it. Go's
// encoding/json already sorts map[string]any keys alphabetically, so
// ToJSON's output is deterministic without extra bookkeeping.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

const schemaV1 = "nbeopt.error/v1"

// New builds a Report for code/phase/message, normalizing a nil data
// map to an empty one so ToJSON never omits the field inconsistently.
func New(phase, code, message string, data map[string]any) *Report {
	if data == nil {
		data = map[string]any{}
	}
	return &Report{Schema: schemaV1, Code: code, Phase: phase, Message: message, Data: data}
}

// ReportError wraps a Report as an error, so it survives panic/recover
// and errors.As the same way any other Go error chain would.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "diagnostics: nil report"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// Wrap returns r as an error, for panic(diagnostics.Wrap(r)) call
// sites.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// AsReport extracts a Report from an error chain, typically the value
// recovered from a panic raised via Wrap.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// ToJSON renders r as indented JSON.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Eval builds an evaluator-phase report.
func Eval(code, message string, data map[string]any) *Report { return New("eval", code, message, data) }

// Build builds a builder-phase report.
func Build(code, message string, data map[string]any) *Report {
	return New("build", code, message, data)
}

// Quote builds a quoter-phase report.
func Quote(code, message string, data map[string]any) *Report {
	return New("quote", code, message, data)
}

// Optimize builds an optimizer-driver-phase report.
func Optimize(code, message string, data map[string]any) *Report {
	return New("optimize", code, message, data)
}

// Extern builds an extern-resolution-phase report.
func Extern(code, message string, data map[string]any) *Report {
	return New("extern", code, message, data)
}
