// Package classifier adapts a pre-trained statistical model to the
// feature vector contract. Artifacts are JSON documents produced by the
// offline training pipeline; two evaluator types are supported, a
// gradient-free decision forest and a compact logistic model. A
// distilled logistic artifact is embedded as the shipping default so
// the engine scores out of the box.
package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/phishguard/phishguard/pkg/features"
)

//go:embed model_default.json
var defaultArtifact []byte

// NeutralProbability is returned when no model is loaded. The verdict
// then lands in the Suspicious band rather than silently passing or
// blocking, and the response is marked degraded.
const NeutralProbability = 0.5

// Model is the parsed artifact.
type Model struct {
	SchemaVersion int       `json:"schema_version"`
	FeatureCount  int       `json:"feature_count"`
	ModelType     string    `json:"model_type"`
	TrainedAt     string    `json:"trained_at,omitempty"`
	Logistic      *Logistic `json:"logistic,omitempty"`
	Forest        *Forest   `json:"forest,omitempty"`
}

// Logistic is a linear model over the feature vector squashed through
// a sigmoid.
type Logistic struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// Forest is an averaged ensemble of binary decision trees.
type Forest struct {
	Trees []Tree `json:"trees"`
}

// Tree holds nodes in array form; index 0 is the root. Leaf nodes
// carry a probability value, interior nodes route on a feature
// threshold.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is one node of a decision tree.
type TreeNode struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// Classifier scores feature vectors against a loaded model. A nil
// model means degraded operation: every score is NeutralProbability.
type Classifier struct {
	model *Model
}

// Load reads and validates a model artifact from disk. Schema or
// feature-count disagreement with the compiled feature contract is a
// configuration error, never silently tolerated.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return parse(data)
}

// LoadDefault parses the embedded distilled model. The artifact ships
// inside the binary, so a parse failure is a build defect.
func LoadDefault() *Classifier {
	c, err := parse(defaultArtifact)
	if err != nil {
		panic(fmt.Sprintf("embedded model artifact invalid: %v", err))
	}
	return c
}

// NewDegraded returns a classifier with no model loaded. Every score
// is NeutralProbability and Ready reports false.
func NewDegraded() *Classifier {
	return &Classifier{}
}

func parse(data []byte) (*Classifier, error) {
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if m.SchemaVersion != features.SchemaVersion {
		return nil, fmt.Errorf("model trained against feature schema v%d, engine speaks v%d",
			m.SchemaVersion, features.SchemaVersion)
	}
	if m.FeatureCount != features.FeatureCount {
		return nil, fmt.Errorf("model expects %d features, engine produces %d",
			m.FeatureCount, features.FeatureCount)
	}

	switch m.ModelType {
	case "logistic":
		if m.Logistic == nil {
			return nil, fmt.Errorf("model_type logistic but no logistic section")
		}
		if len(m.Logistic.Weights) != m.FeatureCount {
			return nil, fmt.Errorf("logistic weight count %d does not match feature count %d",
				len(m.Logistic.Weights), m.FeatureCount)
		}
	case "forest":
		if m.Forest == nil || len(m.Forest.Trees) == 0 {
			return nil, fmt.Errorf("model_type forest but no trees")
		}
		for i, t := range m.Forest.Trees {
			if err := validateTree(t, m.FeatureCount); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
	default:
		return nil, fmt.Errorf("unknown model_type %q", m.ModelType)
	}

	return &Classifier{model: m}, nil
}

func validateTree(t Tree, featureCount int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= featureCount {
			return fmt.Errorf("node %d routes on feature %d, out of range", i, n.Feature)
		}
		// Children must come after their parent in the array, so a
		// routing walk always terminates.
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has child index out of order", i)
		}
	}
	return nil
}

// Ready reports whether a model is loaded.
func (c *Classifier) Ready() bool { return c.model != nil }

// Version returns the loaded model's feature schema version, or 0 when
// degraded.
func (c *Classifier) Version() int {
	if c.model == nil {
		return 0
	}
	return c.model.SchemaVersion
}

// Score returns P(phishing) for the vector, clamped to [0,1]. When no
// model is loaded it returns NeutralProbability; callers must check
// Ready to propagate degraded status.
func (c *Classifier) Score(v features.Vector) float64 {
	if c.model == nil {
		return NeutralProbability
	}
	var p float64
	switch c.model.ModelType {
	case "logistic":
		p = c.model.Logistic.score(v)
	case "forest":
		p = c.model.Forest.score(v)
	}
	return clamp01(p)
}

func (l *Logistic) score(v features.Vector) float64 {
	z := l.Bias
	for i, w := range l.Weights {
		z += w * v[i]
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func (f *Forest) score(v features.Vector) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.score(v)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) score(v features.Vector) float64 {
	i := 0
	// Child indices strictly increase (checked at load), so the walk
	// stays inside the slice and terminates.
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if v[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func clamp01(p float64) float64 {
	if math.IsNaN(p) {
		return NeutralProbability
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
