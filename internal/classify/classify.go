package classify

import (
	"strings"

	"github.com/enginesniff/enginesniff/internal/types"
)

// Score thresholds for confidence levels, evaluated top-down.
const (
	HighScore   = 5.0
	MediumScore = 2.0
)

// Report carries the result plus every engine's tally in declaration order,
// with Unknown first.
type Report struct {
	Result types.DetectionResult `json:"result"`
	Scores []types.EngineScore   `json:"scores"`
}

type tally struct {
	name    string
	score   float64
	matches []string
}

// Classify returns the best-scoring engine for files. It never fails; empty
// inputs yield Unknown with zero confidence.
func Classify(files []string, configs []types.EngineConfig) types.DetectionResult {
	return Evaluate(files, configs).Result
}

// Evaluate is Classify with the per-engine score breakdown.
//
// Ties go to the engine declared first. Unknown is seeded ahead of every
// configured engine at 0 and is only displaced by a strictly positive score.
// Configs sharing a name accumulate into the first declaration's tally.
func Evaluate(files []string, configs []types.EngineConfig) Report {
	tallies := make([]*tally, 0, len(configs)+1)
	byName := make(map[string]*tally, len(configs)+1)
	add := func(name string) *tally {
		if t, ok := byName[name]; ok {
			return t
		}
		t := &tally{name: name}
		byName[name] = t
		tallies = append(tallies, t)
		return t
	}
	add(types.Unknown)
	slots := make([]*tally, len(configs))
	for i, cfg := range configs {
		slots[i] = add(cfg.Name)
	}

	for _, file := range files {
		lower := strings.ToLower(file)
		for i, cfg := range configs {
			t := slots[i]
			for _, sig := range cfg.Signatures {
				if !sig.Matches(lower) {
					continue
				}
				t.score += sig.Weight
				t.matches = append(t.matches, file)
			}
		}
	}

	best := tallies[0]
	for _, t := range tallies[1:] {
		if t.score > best.score {
			best = t
		}
	}

	matches := best.matches
	if matches == nil {
		matches = []string{}
	}
	rep := Report{
		Result: types.DetectionResult{
			Engine:     best.name,
			Confidence: ConfidenceFor(best.score),
			Matches:    matches,
		},
		Scores: make([]types.EngineScore, 0, len(tallies)),
	}
	for _, t := range tallies {
		rep.Scores = append(rep.Scores, types.EngineScore{Engine: t.name, Score: t.score, Matched: len(t.matches)})
	}
	return rep
}

// ConfidenceFor maps a winning score onto the fixed confidence levels.
func ConfidenceFor(score float64) float64 {
	switch {
	case score >= HighScore:
		return types.ConfidenceHigh
	case score >= MediumScore:
		return types.ConfidenceMedium
	case score > 0:
		return types.ConfidenceLow
	default:
		return types.ConfidenceNone
	}
}
