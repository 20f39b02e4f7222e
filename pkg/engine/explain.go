package engine

import (
	"fmt"

	"github.com/phishguard/phishguard/pkg/features"
	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// EvidenceKind tags each explanation entry so consumers never need to
// parse the text to know its polarity.
type EvidenceKind string

const (
	EvidenceTrust   EvidenceKind = "trust"
	EvidenceRisk    EvidenceKind = "risk"
	EvidenceNeutral EvidenceKind = "neutral"
)

// ExplanationEntry is one human-readable rationale line.
type ExplanationEntry struct {
	Kind EvidenceKind `json:"kind"`
	Text string       `json:"text"`
}

// Trust signal weights. A summed score of trustShortCircuit or more
// suppresses all risk flags: institutional TLDs are strong enough
// evidence that structural quirks read as noise, not threat.
const (
	trustWeightEducational = 3
	trustWeightGovernment  = 3
	trustWeightOrg         = 2
	trustWeightNonprofit   = 1
	trustWeightCountry     = 1
	trustShortCircuit      = 3
)

// Explainer turns URL properties into ordered rationale strings.
type Explainer struct {
	trust *trust.Config
}

// NewExplainer returns an Explainer bound to cfg.
func NewExplainer(cfg *trust.Config) *Explainer {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &Explainer{trust: cfg}
}

// Explain builds the rationale for u given its extracted features.
// Trust evidence always comes first; when the summed trust weight
// reaches the short-circuit threshold the risk flags are omitted
// entirely. The explanation is decoupled from the verdict: a
// high-probability classification is reported even when the rationale
// reads positive, and vice versa.
func (e *Explainer) Explain(u *urlinfo.URL, v features.Vector) []ExplanationEntry {
	var entries []ExplanationEntry
	host := u.Host

	trustScore := 0
	addTrust := func(weight int, text string) {
		trustScore += weight
		entries = append(entries, ExplanationEntry{Kind: EvidenceTrust, Text: text})
	}

	if v[features.IdxEducationalTLD] == 1 {
		addTrust(trustWeightEducational, "educational institution domain")
	}
	if v[features.IdxGovernmentTLD] == 1 {
		addTrust(trustWeightGovernment, "government domain")
	}
	if org := e.trust.MatchTrustedOrg(host); org != "" {
		addTrust(trustWeightOrg, "recognized organization: "+org)
	}
	if v[features.IdxNonprofitTLD] == 1 {
		addTrust(trustWeightNonprofit, "nonprofit organization domain")
	}
	if v[features.IdxCountryTLD] == 1 {
		addTrust(trustWeightCountry, "registered country-code domain")
	}

	if trustScore >= trustShortCircuit {
		return entries
	}

	risks := e.riskFlags(u, v, trustScore > 0)
	entries = append(entries, risks...)

	if len(risks) == 0 && trustScore == 0 {
		entries = append(entries, ExplanationEntry{
			Kind: EvidenceNeutral,
			Text: "no obvious threats detected in URL structure",
		})
	}
	return entries
}

// riskFlags evaluates the structural heuristics in a fixed order.
// Generic and banking keyword flags are suppressed for trust-matched
// hosts, mirroring the extractor's banking-count override: flagging
// "account" on a known organization's own domain would only produce
// contradictory rationale.
func (e *Explainer) riskFlags(u *urlinfo.URL, v features.Vector, trusted bool) []ExplanationEntry {
	var flags []ExplanationEntry
	risk := func(text string) {
		flags = append(flags, ExplanationEntry{Kind: EvidenceRisk, Text: text})
	}

	if v[features.IdxURLLength] > 100 {
		risk(fmt.Sprintf("unusually long URL (%d characters)", int(v[features.IdxURLLength])))
	}
	if v[features.IdxSubdomainCount] > 2 {
		risk(fmt.Sprintf("excessive subdomains (%d)", int(v[features.IdxSubdomainCount])))
	}
	if v[features.IdxHasAt] == 1 {
		risk("@ symbol present, can disguise the real destination")
	}
	if v[features.IdxHyphenInHost] == 1 {
		risk("hyphenated host name, common in lookalike domains")
	}
	if v[features.IdxIPLiteral] == 1 {
		risk("raw IP address instead of a domain name")
	}
	if v[features.IdxHTTPS] == 0 {
		risk("connection is not HTTPS")
	}
	if !trusted {
		if v[features.IdxHasKeyword] == 1 {
			risk(fmt.Sprintf("phishing-associated keywords present (%d match(es))",
				int(v[features.IdxKeywordCount])))
		}
		if v[features.IdxBankingKeywordCount] > 0 {
			risk(fmt.Sprintf("banking-related terms on an unrecognized host (%d match(es))",
				int(v[features.IdxBankingKeywordCount])))
		}
	}
	return flags
}
