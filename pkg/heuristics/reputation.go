package heuristics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// Phishing URL shapes that damage a host's reputation standing.
var reputationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`verify.*account`),
	regexp.MustCompile(`secure.*update`),
	regexp.MustCompile(`confirm.*identity`),
	regexp.MustCompile(`suspend.*account`),
	regexp.MustCompile(`unusual.*activity`),
	regexp.MustCompile(`click.*here`),
	regexp.MustCompile(`urgent.*action`),
}

var reDigitRun = regexp.MustCompile(`\d{3,}`)

// HostProber reports whether a host resolves. Implementations must be
// fast and best-effort; returning true on uncertainty is expected so
// probe failures never inflate risk by themselves.
type HostProber interface {
	Resolvable(host string) bool
}

// Reputation scores domain legitimacy signals. Unlike the lexical
// module, its trusted-domain check is an absolute override: an
// allowlisted host scores 0 regardless of any other property.
type Reputation struct {
	trust  *trust.Config
	prober HostProber
}

// NewReputation returns the primary reputation analyzer. prober may be
// nil, in which case the DNS check is skipped entirely.
func NewReputation(cfg *trust.Config, prober HostProber) *Reputation {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Reputation{trust: cfg, prober: prober}
}

func (r *Reputation) Name() string { return NameReputation }

func (r *Reputation) Analyze(u *urlinfo.URL) ModuleScore {
	host := u.Host

	if r.trust.IsTrustedDomain(host) {
		return ModuleScore{
			Score:    0,
			Status:   StatusOK,
			Evidence: []string{"trusted domain: " + host},
		}
	}

	score := 0.0
	var evidence []string

	if r.prober != nil && !r.prober.Resolvable(host) {
		evidence = append(evidence, "domain does not resolve")
		score += 0.40
	}

	if age := domainAgeRisk(host); age > 0 {
		evidence = append(evidence, "domain name suggests recent registration")
		score += age
	}

	low := strings.ToLower(u.Raw)
	for _, re := range reputationPatterns {
		if re.MatchString(low) {
			evidence = append(evidence, "phishing URL pattern detected")
			score += 0.25
			break
		}
	}

	if u.Scheme != "https" {
		evidence = append(evidence, "connection is not HTTPS")
		score += 0.15
	}

	if imp, brand := r.impersonationRisk(u.DisplayHost()); imp > 0 {
		evidence = append(evidence, "possible impersonation of "+brand)
		score += imp
	}

	if u.IsIPLiteral() {
		evidence = append(evidence, "host is a raw IP address")
		score += 0.35
	}

	if len(host) > 40 {
		evidence = append(evidence, "unusually long host")
		score += 0.10
	}

	return ModuleScore{Score: capped(score), Status: StatusOK, Evidence: evidence}
}

// impersonationRisk detects brand abuse two ways: a real brand name
// embedded in a host that is not the brand's own domain, and known
// typosquatting variants. Legitimate brand positions (brand.com or any
// subdomain of it) are exempt; that asymmetry is what keeps real brand
// infrastructure off the penalty list.
func (r *Reputation) impersonationRisk(host string) (float64, string) {
	risk := 0.0
	matched := ""

	// Brands are checked in sorted order so a host touching several
	// brands always yields the same score.
	brands := make([]string, 0, len(r.trust.TyposquatVariants))
	for brand := range r.trust.TyposquatVariants {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	for _, brand := range brands {
		if strings.Contains(host, brand) {
			if host == brand+".com" || strings.HasSuffix(host, "."+brand+".com") {
				continue
			}
			risk += 0.20
			matched = brand
			break
		}
		found := false
		for _, variant := range r.trust.TyposquatVariants[brand] {
			if strings.Contains(host, variant) {
				risk += 0.30
				matched = brand
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	if risk > 0.30 {
		risk = 0.30
	}
	return risk, matched
}

// domainAgeRisk is a registration-age stand-in used when no external
// lookup is available: long digit runs and current-year strings are
// common in throwaway phishing registrations.
func domainAgeRisk(host string) float64 {
	if reDigitRun.MatchString(host) {
		return 0.20
	}
	year := time.Now().Year()
	if strings.Contains(host, strconv.Itoa(year)) || strings.Contains(host, strconv.Itoa(year-1)) {
		return 0.15
	}
	return 0.0
}
