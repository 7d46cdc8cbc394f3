package core

import (
	"encoding/json"
	"io"
)

// MarshalResult pretty-prints a detection result as JSON for humans or pipelines.
func MarshalResult(w io.Writer, res DetectionResult) error {
	if res.Matches == nil {
		res.Matches = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// UnmarshalResult decodes a detection result, useful for ingestion tests.
func UnmarshalResult(r io.Reader) (DetectionResult, error) {
	var res DetectionResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return DetectionResult{}, err
	}
	return res, nil
}
