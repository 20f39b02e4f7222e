package heuristics

import (
	"strings"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// Language detects social-engineering vocabulary across five keyword
// families and a small phrase-pattern library. It operates on the
// percent-decoded URL; page titles or body text are out of scope here.
type Language struct {
	trust *trust.Config
}

// NewLanguage returns the primary language analyzer.
func NewLanguage(cfg *trust.Config) *Language {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Language{trust: cfg}
}

func (l *Language) Name() string { return NameLanguage }

func (l *Language) Analyze(u *urlinfo.URL) ModuleScore {
	text := strings.ToLower(u.Decoded)
	score := 0.0
	var evidence []string

	urgency := matchKeywords(text, l.trust.UrgencyKeywords)
	trustWords := matchKeywords(text, l.trust.TrustKeywords)
	financial := matchKeywords(text, l.trust.FinancialKeywords)
	action := matchKeywords(text, l.trust.ActionKeywords)
	brands := matchKeywords(text, l.trust.BrandNames)

	if len(urgency) > 0 {
		score += cappedContribution(len(urgency), 0.08, 0.25)
		evidence = append(evidence, "urgency language: "+strings.Join(urgency, ", "))
	}
	if len(trustWords) > 0 {
		score += cappedContribution(len(trustWords), 0.06, 0.20)
		evidence = append(evidence, "trust-exploitation language: "+strings.Join(trustWords, ", "))
	}
	if len(financial) > 0 {
		score += cappedContribution(len(financial), 0.05, 0.15)
		evidence = append(evidence, "financial language: "+strings.Join(financial, ", "))
	}
	if len(action) > 0 {
		score += cappedContribution(len(action), 0.04, 0.15)
		evidence = append(evidence, "call-to-action language: "+strings.Join(action, ", "))
	}
	if len(brands) > 0 {
		// Brand mentions are far more dangerous next to urgency or
		// trust-exploitation vocabulary.
		if len(urgency) > 0 || len(trustWords) > 0 {
			score += 0.20
		} else {
			score += 0.10
		}
		evidence = append(evidence, "brand mention: "+strings.Join(brands, ", "))
	}

	if len(urgency) > 0 && len(financial) > 0 && len(action) > 0 {
		score += 0.25
		evidence = append(evidence, "combined urgency, financial and action pattern (classic phishing)")
	}
	if len(brands) > 0 && len(trustWords) > 0 && len(urgency) > 0 {
		score += 0.30
		evidence = append(evidence, "brand impersonation with urgency pattern")
	}

	phrases := 0
	for _, re := range l.trust.PhraseRegexps() {
		if re.MatchString(text) {
			phrases++
		}
	}
	if phrases > 0 {
		score += cappedContribution(phrases, 0.10, 0.30)
		evidence = append(evidence, "suspicious phrase patterns matched")
	}

	return ModuleScore{Score: capped(score), Status: StatusOK, Evidence: evidence}
}

func matchKeywords(text string, keywords []string) []string {
	var hits []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

func cappedContribution(n int, per, limit float64) float64 {
	c := float64(n) * per
	if c > limit {
		return limit
	}
	return c
}
