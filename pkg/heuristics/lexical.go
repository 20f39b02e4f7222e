package heuristics

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// uuidPattern matches session identifiers common in modern web apps.
// Their presence discounts the lexical score; random-looking paths are
// usually framework routing, not obfuscation.
var uuidPattern = regexp.MustCompile(`\b[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}\b`)

// Lexical scores structural anomalies of the URL string itself:
// length, entropy, character mix, suspicious TLDs, homoglyphs.
type Lexical struct {
	trust *trust.Config
}

// NewLexical returns the primary lexical analyzer.
func NewLexical(cfg *trust.Config) *Lexical {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Lexical{trust: cfg}
}

func (l *Lexical) Name() string { return NameLexical }

func (l *Lexical) Analyze(u *urlinfo.URL) ModuleScore {
	score := 0.0
	var evidence []string

	low := strings.ToLower(u.Raw)
	host := u.Host
	trusted := l.trust.IsTrustedDomain(host)
	hasUUID := uuidPattern.MatchString(u.Path)

	// Length checks are lenient for allowlisted hosts; big SSO and CDN
	// URLs on known-good domains are routine.
	switch {
	case len(u.Raw) > 150:
		if !trusted {
			evidence = append(evidence, "extremely long URL")
			score += 0.20
		}
	case len(u.Raw) > 100:
		if !trusted {
			evidence = append(evidence, "long URL")
			score += 0.05
		}
	}

	if len(host) > 50 {
		evidence = append(evidence, "unusually long domain")
		score += 0.15
	}

	if dots := strings.Count(host, "."); dots > 3 {
		evidence = append(evidence, fmt.Sprintf("multiple subdomains (%d)", dots))
		score += 0.15
	}

	if entropy(host) > 4.5 && !trusted {
		evidence = append(evidence, "high entropy in domain (possible random string)")
		score += 0.20
	}

	if specials := countSpecialHostChars(host); specials > 3 {
		evidence = append(evidence, "many special characters in domain")
		score += 0.15
	}

	if digits := countDigits(host); len(host) > 5 && float64(digits) > float64(len(host))*0.3 {
		evidence = append(evidence, "high digit ratio in domain")
		score += 0.10
	}

	for _, tld := range l.trust.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			evidence = append(evidence, "suspicious TLD: "+tld)
			score += 0.25
			break
		}
	}

	if u.IsIPLiteral() {
		evidence = append(evidence, "IP address used instead of domain")
		score += 0.30
	}

	for _, w := range l.trust.SuspiciousPathWords {
		if strings.Contains(host, w) {
			evidence = append(evidence, "suspicious keyword in domain: "+w)
			score += 0.10
			break
		}
	}

	// Scan the folded display form so fullwidth and punycode lookalikes
	// collapse onto their ASCII skeletons first.
	if brand := l.homoglyphBrand(u.DisplayHost()); brand != "" {
		evidence = append(evidence, "possible homoglyph attack (lookalike characters, resembles "+brand+")")
		score += 0.20
	}

	if strings.Count(host, "-") > 3 {
		evidence = append(evidence, "excessive hyphens in domain")
		score += 0.10
	}

	if strings.Contains(low, "@") {
		evidence = append(evidence, "@ symbol in URL (credential hiding)")
		score += 0.30
	}

	if strings.Contains(u.Path, "//") {
		evidence = append(evidence, "double slashes in path")
		score += 0.10
	}

	if u.Port != "" && u.Port != "80" && u.Port != "443" {
		evidence = append(evidence, "non-standard port: "+u.Port)
		score += 0.10
	}

	// Trust is a mitigating signal here, not an absolute one: halve the
	// accumulated score and say so rather than suppressing the flags.
	if trusted && score > 0 {
		score *= 0.5
		evidence = append(evidence, "trust adjustment applied (trusted domain detected)")
	}

	// Session-identifier paths discount silently; no flag, this is
	// normal application behavior.
	if hasUUID && score > 0 {
		score *= 0.8
	}

	return ModuleScore{Score: capped(score), Status: StatusOK, Evidence: evidence}
}

// homoglyphBrand returns the brand a lookalike-substituted variant of
// which appears in host, or "".
func (l *Lexical) homoglyphBrand(host string) string {
	for _, brand := range l.trust.BrandNames {
		for real, fakes := range l.trust.Homoglyphs {
			if !strings.Contains(brand, real) {
				continue
			}
			for _, fake := range fakes {
				variant := strings.ReplaceAll(brand, real, strings.ToLower(fake))
				if variant != brand && strings.Contains(host, variant) {
					return brand
				}
			}
		}
	}
	return ""
}

// entropy returns the Shannon entropy of text in bits per character.
// Generated domains typically score above 4.5.
func entropy(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	counts := make(map[rune]float64)
	for _, r := range text {
		counts[r]++
	}

	total := float64(len(text))
	e := 0.0
	for _, count := range counts {
		p := count / total
		e -= p * math.Log2(p)
	}
	return e
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// countSpecialHostChars counts characters outside [a-zA-Z0-9.].
func countSpecialHostChars(host string) int {
	n := 0
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
		default:
			n++
		}
	}
	return n
}
