package heuristics

import (
	"strings"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// Simplified fallback scorers. Each honors the same [0,1] contract as
// its primary counterpart with a much smaller rule set: no entropy, no
// homoglyphs, no DNS, no regexes beyond what the primary already
// compiled. They exist so one misbehaving primary never takes down a
// scan.

type lexicalFallback struct {
	trust *trust.Config
}

// NewLexicalFallback returns the simplified lexical scorer.
func NewLexicalFallback(cfg *trust.Config) Analyzer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &lexicalFallback{trust: cfg}
}

func (f *lexicalFallback) Name() string { return NameLexical }

func (f *lexicalFallback) Analyze(u *urlinfo.URL) ModuleScore {
	score := 0.0
	host := u.Host

	if len(u.Raw) > 100 {
		score += 0.25
	} else if len(u.Raw) > 75 {
		score += 0.15
	}
	if u.IsIPLiteral() {
		score += 0.30
	}
	for _, tld := range f.trust.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			score += 0.25
			break
		}
	}
	if strings.Contains(u.Raw, "@") {
		score += 0.20
	}
	if dots := strings.Count(host, "."); dots > 3 {
		score += 0.10
	} else if dots > 2 {
		score += 0.05
	}
	if hyphens := strings.Count(host, "-"); hyphens > 3 {
		score += 0.10
	} else if hyphens > 1 {
		score += 0.05
	}
	if len(host) > 40 {
		score += 0.10
	}
	for _, w := range f.trust.SuspiciousPathWords {
		if strings.Contains(host, w) {
			score += 0.10
			break
		}
	}

	return ModuleScore{Score: capped(score), Status: StatusOK}
}

type reputationFallback struct {
	trust *trust.Config
}

// NewReputationFallback returns the simplified reputation scorer.
func NewReputationFallback(cfg *trust.Config) Analyzer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &reputationFallback{trust: cfg}
}

func (f *reputationFallback) Name() string { return NameReputation }

func (f *reputationFallback) Analyze(u *urlinfo.URL) ModuleScore {
	host := u.Host

	if f.trust.IsTrustedDomain(host) {
		return ModuleScore{Score: 0, Status: StatusOK}
	}

	score := 0.0
	if u.Scheme != "https" {
		score += 0.30
	}
	for _, w := range f.trust.SuspiciousPathWords {
		if strings.Contains(host, w) {
			score += 0.15
			break
		}
	}
	for _, brand := range f.trust.BrandNames {
		if strings.Contains(host, brand) {
			if host != brand+".com" && !strings.HasSuffix(host, "."+brand+".com") {
				score += 0.30
			}
			break
		}
	}
	if u.IsIPLiteral() {
		score += 0.35
	}
	if len(host) > 40 {
		score += 0.10
	}

	return ModuleScore{Score: capped(score), Status: StatusOK}
}

type behaviorFallback struct {
	trust *trust.Config
}

// NewBehaviorFallback returns the simplified behavior scorer.
func NewBehaviorFallback(cfg *trust.Config) Analyzer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &behaviorFallback{trust: cfg}
}

func (f *behaviorFallback) Name() string { return NameBehavior }

func (f *behaviorFallback) Analyze(u *urlinfo.URL) ModuleScore {
	score := 0.0
	low := strings.ToLower(u.Raw)

	for _, s := range f.trust.ShortenerHosts {
		if strings.Contains(low, s) {
			score += 0.30
			break
		}
	}
	if n := countURLSpecials(u.Raw); n > 15 {
		score += 0.20
	} else if n > 8 {
		score += 0.10
	}
	if pct := strings.Count(u.Raw, "%"); pct > 5 {
		score += 0.20
	} else if pct > 2 {
		score += 0.10
	}
	hits := 0
	for _, w := range f.trust.SuspiciousPathWords {
		if strings.Contains(u.Path, w) {
			hits++
		}
	}
	if hits > 0 {
		score += cappedContribution(hits, 0.10, 0.25)
	}
	for _, p := range f.trust.RedirectParams {
		if strings.Contains(u.Query, p) {
			score += 0.15
			break
		}
	}
	if strings.Contains(u.Path, "//") {
		score += 0.10
	}

	return ModuleScore{Score: capped(score), Status: StatusOK}
}

type languageFallback struct {
	trust *trust.Config
}

// NewLanguageFallback returns the simplified language scorer.
func NewLanguageFallback(cfg *trust.Config) Analyzer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &languageFallback{trust: cfg}
}

func (f *languageFallback) Name() string { return NameLanguage }

func (f *languageFallback) Analyze(u *urlinfo.URL) ModuleScore {
	text := strings.ToLower(u.Decoded)

	phishing := len(matchKeywords(text, f.trust.TrustKeywords)) +
		len(matchKeywords(text, f.trust.ActionKeywords))
	urgency := len(matchKeywords(text, f.trust.UrgencyKeywords))

	score := float64(phishing)*0.12 + float64(urgency)*0.10
	return ModuleScore{Score: capped(score), Status: StatusOK}
}

// Defaults builds the standard module set: each primary analyzer paired
// with its simplified fallback. prober may be nil to skip DNS checks.
func Defaults(cfg *trust.Config, prober HostProber) []Analyzer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return []Analyzer{
		WithFallback(NewLexical(cfg), NewLexicalFallback(cfg)),
		WithFallback(NewReputation(cfg, prober), NewReputationFallback(cfg)),
		WithFallback(NewBehavior(cfg), NewBehaviorFallback(cfg)),
		WithFallback(NewLanguage(cfg), NewLanguageFallback(cfg)),
	}
}
