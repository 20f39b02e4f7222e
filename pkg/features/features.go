// Package features converts a parsed URL into the fixed numeric vector
// consumed by the classifier. The vector layout is a versioned contract:
// any change to the field count, order, or meaning is a breaking change
// that must bump SchemaVersion and be paired with a retrained model
// artifact carrying the same version.
package features

import (
	"strings"

	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

const (
	// SchemaVersion identifies the vector layout below. Model artifacts
	// declare the version they were trained against and are rejected on
	// mismatch.
	SchemaVersion = 1

	// FeatureCount is the vector length for SchemaVersion 1.
	FeatureCount = 18
)

// Indices into the vector, in contract order.
const (
	IdxURLLength = iota
	IdxDotCount
	IdxHasAt
	IdxHyphenInHost
	IdxIPLiteral
	IdxHTTPS
	IdxHostDigitCount
	IdxHostNonAlnumCount
	IdxSubdomainCount
	IdxKeywordCount
	IdxHasKeyword
	IdxEducationalTLD
	IdxGovernmentTLD
	IdxTrustedOrg
	IdxNonprofitTLD
	IdxCountryTLD
	IdxBankingKeywordCount
	IdxLegitSubdomain
)

// Names holds the canonical feature names in vector order, for audit
// records and model artifact sanity checks.
var Names = [FeatureCount]string{
	"url_length",
	"dot_count",
	"has_at_symbol",
	"hyphen_in_host",
	"ip_literal_host",
	"uses_https",
	"host_digit_count",
	"host_nonalnum_count",
	"subdomain_count",
	"keyword_count",
	"has_keyword",
	"educational_tld",
	"government_tld",
	"trusted_org",
	"nonprofit_tld",
	"country_tld",
	"banking_keyword_count",
	"legit_subdomain_prefix",
}

// Vector is one extracted feature vector.
type Vector [FeatureCount]float64

// Extractor computes feature vectors against a trust configuration.
type Extractor struct {
	trust *trust.Config
}

// NewExtractor returns an Extractor bound to cfg. A nil cfg falls back
// to the compiled-in defaults.
func NewExtractor(cfg *trust.Config) *Extractor {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Extractor{trust: cfg}
}

// Extract computes the SchemaVersion-1 vector for u. Binary signals are
// encoded 1.0/0.0; counts are raw counts. Extraction is pure: the same
// URL and trust config always produce the same vector.
func (e *Extractor) Extract(u *urlinfo.URL) Vector {
	var v Vector

	low := strings.ToLower(u.Raw)
	host := u.Host

	v[IdxURLLength] = float64(len(u.Raw))
	v[IdxDotCount] = float64(strings.Count(low, "."))
	v[IdxHasAt] = boolFeature(strings.Contains(low, "@"))
	v[IdxHyphenInHost] = boolFeature(strings.Contains(host, "-"))
	v[IdxIPLiteral] = boolFeature(u.IsIPLiteral())
	v[IdxHTTPS] = boolFeature(u.Scheme == "https")

	digits, nonAlnum := hostCharCounts(host)
	v[IdxHostDigitCount] = float64(digits)
	v[IdxHostNonAlnumCount] = float64(nonAlnum)
	v[IdxSubdomainCount] = float64(u.SubdomainCount())

	kw := 0
	for _, k := range e.trust.PhishingKeywords {
		kw += strings.Count(low, k)
	}
	v[IdxKeywordCount] = float64(kw)
	v[IdxHasKeyword] = boolFeature(kw > 0)

	v[IdxEducationalTLD] = boolFeature(e.trust.IsEducationalTLD(host))
	v[IdxGovernmentTLD] = boolFeature(e.trust.IsGovernmentTLD(host))
	trustedOrg := e.trust.MatchTrustedOrg(host) != ""
	v[IdxTrustedOrg] = boolFeature(trustedOrg)
	v[IdxNonprofitTLD] = boolFeature(e.trust.IsNonprofitTLD(host))
	v[IdxCountryTLD] = boolFeature(e.trust.IsCountryTLD(host))

	// Banking terms on an already-trusted host are routine product
	// vocabulary, not impersonation. Zero the count so trusted banks
	// and payment providers are not penalized for naming their own
	// services.
	trusted := trustedOrg ||
		v[IdxEducationalTLD] == 1 || v[IdxGovernmentTLD] == 1 ||
		v[IdxNonprofitTLD] == 1 || v[IdxCountryTLD] == 1
	if !trusted {
		bank := 0
		for _, k := range e.trust.BankingKeywords {
			bank += strings.Count(low, k)
		}
		v[IdxBankingKeywordCount] = float64(bank)
	}

	// The prefix signal only makes sense when there actually is a
	// subdomain in front of the registrable domain.
	if len(u.Labels) > 2 && e.trust.IsLegitimateSubdomain(u.Labels[0]) {
		v[IdxLegitSubdomain] = 1
	}

	return v
}

// TrustMatched reports whether any trust signal fires for u, using the
// same definition Extract uses to suppress the banking keyword count.
func (e *Extractor) TrustMatched(u *urlinfo.URL) bool {
	host := u.Host
	return e.trust.MatchTrustedOrg(host) != "" ||
		e.trust.IsEducationalTLD(host) ||
		e.trust.IsGovernmentTLD(host) ||
		e.trust.IsNonprofitTLD(host) ||
		e.trust.IsCountryTLD(host)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// hostCharCounts counts digits and non-alphanumeric characters in the
// host. Dots are structural separators and are excluded from the
// non-alphanumeric count.
func hostCharCounts(host string) (digits, nonAlnum int) {
	for _, r := range host {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '.':
		default:
			nonAlnum++
		}
	}
	return digits, nonAlnum
}
