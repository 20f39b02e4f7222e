package heuristics

import (
	"fmt"
	"strings"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

const specialChars = "-_.~!*'();:@&=+$,/?#[]"

// Behavior approximates obfuscation and redirect-style attacks from
// URL structure alone: shorteners, encoding density, redirect
// parameters, dangerous schemes and extensions. Page content is never
// fetched.
type Behavior struct {
	trust *trust.Config
}

// NewBehavior returns the primary behavior analyzer.
func NewBehavior(cfg *trust.Config) *Behavior {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Behavior{trust: cfg}
}

func (b *Behavior) Name() string { return NameBehavior }

func (b *Behavior) Analyze(u *urlinfo.URL) ModuleScore {
	score := 0.0
	var evidence []string

	low := strings.ToLower(u.Raw)
	path := u.Path
	query := u.Query

	for _, s := range b.trust.ShortenerHosts {
		if u.Host == s || strings.HasSuffix(u.Host, "."+s) {
			evidence = append(evidence, "URL shortener detected: "+s)
			score += 0.30
			break
		}
	}

	if n := countURLSpecials(u.Raw); n > 15 {
		evidence = append(evidence, fmt.Sprintf("high special character count (%d)", n))
		score += 0.20
	} else if n > 8 {
		evidence = append(evidence, fmt.Sprintf("elevated special character count (%d)", n))
		score += 0.10
	}

	if pct := strings.Count(u.Raw, "%"); pct > 5 {
		evidence = append(evidence, fmt.Sprintf("heavy URL encoding detected (%d encoded chars)", pct))
		score += 0.15
	}

	var pathHits []string
	for _, w := range b.trust.SuspiciousPathWords {
		if strings.Contains(path, w) {
			pathHits = append(pathHits, w)
		}
	}
	if len(pathHits) > 0 {
		evidence = append(evidence, "suspicious path elements: "+strings.Join(pathHits, ", "))
		contribution := 0.10 * float64(len(pathHits))
		if contribution > 0.25 {
			contribution = 0.25
		}
		score += contribution
	}

	var paramHits []string
	for _, p := range b.trust.RedirectParams {
		if strings.Contains(query, p) {
			paramHits = append(paramHits, p)
		}
	}
	if len(paramHits) > 0 {
		evidence = append(evidence, "redirect-style query parameters: "+strings.Join(paramHits, ", "))
		score += 0.15
	}

	if strings.Contains(path, "//") {
		evidence = append(evidence, "double slashes in path")
		score += 0.10
	}

	if strings.Contains(low, "javascript:") {
		evidence = append(evidence, "JavaScript protocol in URL")
		score += 0.30
	}

	if strings.HasPrefix(low, "data:") {
		evidence = append(evidence, "data URL detected (can hide malicious content)")
		score += 0.25
	}

	if strings.Count(query, "http") > 1 {
		evidence = append(evidence, "multiple URLs in query (possible redirect chain)")
		score += 0.20
	}

	for _, ext := range b.trust.SuspiciousExtensions {
		if strings.Contains(path, ext) {
			evidence = append(evidence, "suspicious file extension: "+ext)
			score += 0.25
			break
		}
	}

	var formHits []string
	for _, k := range []string{"submit", "post", "form", "input"} {
		if strings.Contains(path, k) {
			formHits = append(formHits, k)
		}
	}
	if len(formHits) > 0 {
		evidence = append(evidence, "form-related path elements: "+strings.Join(formHits, ", "))
		score += 0.10
	}

	return ModuleScore{Score: capped(score), Status: StatusOK, Evidence: evidence}
}

func countURLSpecials(raw string) int {
	n := 0
	for _, r := range raw {
		if strings.ContainsRune(specialChars, r) {
			n++
		}
	}
	return n
}
