package classifier

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/phishguard/phishguard/pkg/features"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefault(t *testing.T) {
	c := LoadDefault()
	if !c.Ready() {
		t.Fatal("embedded model must be ready")
	}
	if c.Version() != features.SchemaVersion {
		t.Errorf("Version() = %d, want %d", c.Version(), features.SchemaVersion)
	}
}

func TestDegradedScoresNeutral(t *testing.T) {
	c := NewDegraded()
	if c.Ready() {
		t.Error("degraded classifier reports ready")
	}
	if got := c.Score(features.Vector{}); got != NeutralProbability {
		t.Errorf("degraded Score = %v, want %v", got, NeutralProbability)
	}
	if c.Version() != 0 {
		t.Errorf("degraded Version = %d, want 0", c.Version())
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	valid := func(body string) string {
		return fmt.Sprintf(`{"schema_version":%d,"feature_count":%d,%s}`,
			features.SchemaVersion, features.FeatureCount, body)
	}
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{garbage`},
		{"schema mismatch", fmt.Sprintf(`{"schema_version":%d,"feature_count":%d,"model_type":"logistic","logistic":{"bias":0,"weights":[]}}`,
			features.SchemaVersion+1, features.FeatureCount)},
		{"feature count mismatch", fmt.Sprintf(`{"schema_version":%d,"feature_count":3,"model_type":"logistic","logistic":{"bias":0,"weights":[0,0,0]}}`,
			features.SchemaVersion)},
		{"unknown model type", valid(`"model_type":"gradient_boost"`)},
		{"logistic missing section", valid(`"model_type":"logistic"`)},
		{"logistic weight count", valid(`"model_type":"logistic","logistic":{"bias":0,"weights":[1,2]}`)},
		{"forest without trees", valid(`"model_type":"forest","forest":{"trees":[]}`)},
		{"forest empty tree", valid(`"model_type":"forest","forest":{"trees":[{"nodes":[]}]}`)},
		{"forest feature out of range", valid(`"model_type":"forest","forest":{"trees":[{"nodes":[{"feature":99,"threshold":0,"left":1,"right":1},{"leaf":true,"value":0.5}]}]}`)},
		{"forest child out of range", valid(`"model_type":"forest","forest":{"trees":[{"nodes":[{"feature":0,"threshold":0,"left":5,"right":1},{"leaf":true,"value":0.5}]}]}`)},
		{"forest self-routing node", valid(`"model_type":"forest","forest":{"trees":[{"nodes":[{"feature":0,"threshold":5,"left":0,"right":0}]}]}`)},
		{"forest backward edge", valid(`"model_type":"forest","forest":{"trees":[{"nodes":[{"feature":0,"threshold":0,"left":1,"right":2},{"leaf":true,"value":0.1},{"feature":1,"threshold":0,"left":0,"right":1}]}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeArtifact(t, tt.body)); err == nil {
				t.Error("Load accepted an invalid artifact")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load on missing file must fail")
	}
}

func TestLogisticScore(t *testing.T) {
	c := LoadDefault()

	// Zero vector scores at the bias alone.
	var zero features.Vector
	base := c.Score(zero)
	if base <= 0 || base >= 0.5 {
		t.Errorf("bias-only probability = %v, want in (0, 0.5)", base)
	}

	// Riskier inputs must move the probability up.
	risky := zero
	risky[features.IdxIPLiteral] = 1
	risky[features.IdxKeywordCount] = 3
	if got := c.Score(risky); got <= base {
		t.Errorf("suspicious features lowered probability: %v <= %v", got, base)
	}

	// Trust features must move it down.
	trusted := zero
	trusted[features.IdxEducationalTLD] = 1
	if got := c.Score(trusted); got >= base {
		t.Errorf("trust feature raised probability: %v >= %v", got, base)
	}
}

func TestForestScore(t *testing.T) {
	// Two trees: one routes on the IP-literal feature, one is a
	// constant leaf.
	body := fmt.Sprintf(`{
		"schema_version": %d,
		"feature_count": %d,
		"model_type": "forest",
		"forest": {"trees": [
			{"nodes": [
				{"feature": %d, "threshold": 0.5, "left": 1, "right": 2},
				{"leaf": true, "value": 0.2},
				{"leaf": true, "value": 0.9}
			]},
			{"nodes": [{"leaf": true, "value": 0.5}]}
		]}
	}`, features.SchemaVersion, features.FeatureCount, features.IdxIPLiteral)

	c, err := Load(writeArtifact(t, body))
	if err != nil {
		t.Fatal(err)
	}

	var v features.Vector
	if got, want := c.Score(v), (0.2+0.5)/2; math.Abs(got-want) > 1e-9 {
		t.Errorf("benign path Score = %v, want %v", got, want)
	}
	v[features.IdxIPLiteral] = 1
	if got, want := c.Score(v), (0.9+0.5)/2; math.Abs(got-want) > 1e-9 {
		t.Errorf("suspicious path Score = %v, want %v", got, want)
	}
}
