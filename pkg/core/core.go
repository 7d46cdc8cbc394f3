package core

import (
	"context"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/config"
	"github.com/enginesniff/enginesniff/internal/scan"
	"github.com/enginesniff/enginesniff/internal/signature"
	"github.com/enginesniff/enginesniff/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	EngineConfig    = types.EngineConfig
	DetectionResult = types.DetectionResult
	EngineScore     = types.EngineScore
	Signature       = signature.Signature
	Report          = classify.Report
	Config          = scan.Config
	Result          = scan.Result
)

// Signature kind constructors.
var (
	PathContains       = signature.PathContains
	Extension          = signature.Extension
	Filename           = signature.Filename
	FilenameStartsWith = signature.FilenameStartsWith
	FilenameEndsWith   = signature.FilenameEndsWith
	PathComponent      = signature.PathComponent
)

// Unknown is the engine name reported when nothing matched.
const Unknown = types.Unknown

// Classify identifies the engine behind a list of file paths.
func Classify(files []string, engines []EngineConfig) DetectionResult {
	return classify.Classify(files, engines)
}

// Evaluate is Classify with every engine's score.
func Evaluate(files []string, engines []EngineConfig) Report {
	return classify.Evaluate(files, engines)
}

// LoadEngines reads and validates an engine set from a JSON or YAML file.
func LoadEngines(path string) ([]EngineConfig, error) { return config.LoadEngines(path) }

// DefaultEngines returns the built-in engine set.
func DefaultEngines() []EngineConfig { return config.DefaultEngines() }

// Scan lists a directory, archive, git revision or registry image and
// classifies the listing.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	return scan.Scan(ctx, cfg)
}
