package engine

import "github.com/phishguard/phishguard/pkg/heuristics"

// ModuleClassifier is the weight-map key for the statistical model.
// The heuristic modules use their own names from pkg/heuristics.
const ModuleClassifier = "classifier"

// Weights maps module name to its share of the final probability.
// Runtime configuration, not a compiled constant: operators can pull
// heuristic modules into the verdict without a code change.
type Weights map[string]float64

// DefaultWeights keeps the classifier as the sole verdict driver while
// the heuristic modules remain analytics-only.
func DefaultWeights() Weights {
	return Weights{
		ModuleClassifier:          1.0,
		heuristics.NameLexical:    0.0,
		heuristics.NameReputation: 0.0,
		heuristics.NameBehavior:   0.0,
		heuristics.NameLanguage:   0.0,
	}
}

// Combine returns the weighted mean of the classifier probability and
// the module scores, normalized by the total weight. A degenerate
// weight map (all zeros) falls back to the classifier probability so a
// misconfigured deployment still produces a sane verdict.
func Combine(classifierProb float64, modules map[string]heuristics.ModuleScore, w Weights) float64 {
	total := 0.0
	sum := 0.0

	if cw := w[ModuleClassifier]; cw > 0 {
		sum += cw * classifierProb
		total += cw
	}
	for name, ms := range modules {
		if name == ModuleClassifier {
			continue
		}
		if mw := w[name]; mw > 0 {
			sum += mw * ms.Score
			total += mw
		}
	}

	if total == 0 {
		return classifierProb
	}
	return sum / total
}
