package report

import (
	"encoding/json"
	"io"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/types"
)

// Output is the JSON document written for a classification. Scores are
// present only when an explanation was requested.
type Output struct {
	types.DetectionResult
	Scores []types.EngineScore `json:"scores,omitempty"`
}

// NewOutput builds the JSON document for rep.
func NewOutput(rep classify.Report, explain bool) Output {
	out := Output{DetectionResult: rep.Result}
	if out.Matches == nil {
		out.Matches = []string{}
	}
	if explain {
		out.Scores = rep.Scores
	}
	return out
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep classify.Report, explain bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewOutput(rep, explain))
}
