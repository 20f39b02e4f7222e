package engine

import "fmt"

// Classification is the three-band verdict.
type Classification string

const (
	ClassLegitimate Classification = "Legitimate"
	ClassSuspicious Classification = "Suspicious"
	ClassPhishing   Classification = "Phishing"
)

// RiskLevel is the coarse severity band paired with each
// classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Thresholds holds the band boundaries. Stateless: one decision per
// call, no transitions.
type Thresholds struct {
	Phishing   float64
	Suspicious float64
}

// DefaultThresholds returns the shipping boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Phishing: 0.75, Suspicious: 0.40}
}

// Validate enforces ordered, in-range boundaries.
func (t Thresholds) Validate() error {
	if t.Phishing <= t.Suspicious {
		return fmt.Errorf("phishing threshold %.2f must exceed suspicious threshold %.2f",
			t.Phishing, t.Suspicious)
	}
	if t.Suspicious <= 0 || t.Phishing >= 1 {
		return fmt.Errorf("thresholds must lie strictly inside (0,1), got %.2f and %.2f",
			t.Suspicious, t.Phishing)
	}
	return nil
}

// Classify maps a probability to its band.
func (t Thresholds) Classify(p float64) (Classification, RiskLevel) {
	switch {
	case p >= t.Phishing:
		return ClassPhishing, RiskHigh
	case p >= t.Suspicious:
		return ClassSuspicious, RiskMedium
	default:
		return ClassLegitimate, RiskLow
	}
}
