package types

import "github.com/enginesniff/enginesniff/internal/signature"

// Unknown is reported when no configured engine scores above zero.
const Unknown = "Unknown"

// Confidence levels. A result's confidence is always one of these.
const (
	ConfidenceNone   = 0.0
	ConfidenceLow    = 0.5
	ConfidenceMedium = 0.8
	ConfidenceHigh   = 1.0
)

// EngineConfig is a named classification target and the signatures that
// contribute to its score. Loaded once and shared read-only.
type EngineConfig struct {
	Name       string                `json:"name" yaml:"name"`
	Signatures []signature.Signature `json:"signatures" yaml:"signatures"`
}

// DetectionResult is the outcome of classifying one file listing.
type DetectionResult struct {
	Engine     string   `json:"engine"`
	Confidence float64  `json:"confidence"`
	Matches    []string `json:"matches"`
}

// EngineScore is one engine's final tally, including losers.
type EngineScore struct {
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
	Matched int     `json:"matched"`
}
