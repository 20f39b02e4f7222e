// Package trust holds the static trust and keyword configuration shared
// by every analyzer. The configuration is built once at startup and is
// strictly read-only afterwards, so concurrent scans never need a lock.
//
// Design principles:
// - COMPILE ONCE: phrase regexes are compiled at construction, not per-scan
// - DRY: a single source of truth for every keyword and suffix list
// - IMMUTABLE: no setter exists; operators override via a YAML file at boot
package trust

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the immutable trust/keyword configuration.
type Config struct {
	// TLD suffix families used as trust signals. Suffixes include the
	// leading dot ("any.host.edu" matches ".edu").
	EducationalTLDs []string `yaml:"educational_tlds"`
	GovernmentTLDs  []string `yaml:"government_tlds"`
	NonprofitTLDs   []string `yaml:"nonprofit_tlds"`
	CountryTLDs     []string `yaml:"country_tlds"`

	// TrustedOrgs are organization names matched as substrings of the
	// host (feature-level trust). TrustedDomains is the exact/subdomain
	// allowlist used by the reputation override and lexical discount.
	TrustedOrgs    []string `yaml:"trusted_orgs"`
	TrustedDomains []string `yaml:"trusted_domains"`

	// LegitimateSubdomains are first-label prefixes common on real
	// infrastructure (mail, portal, api, ...).
	LegitimateSubdomains []string `yaml:"legitimate_subdomains"`

	// Keyword families.
	PhishingKeywords  []string `yaml:"phishing_keywords"`
	BankingKeywords   []string `yaml:"banking_keywords"`
	UrgencyKeywords   []string `yaml:"urgency_keywords"`
	TrustKeywords     []string `yaml:"trust_keywords"`
	FinancialKeywords []string `yaml:"financial_keywords"`
	ActionKeywords    []string `yaml:"action_keywords"`
	BrandNames        []string `yaml:"brand_names"`

	// Structure/behavior lists.
	SuspiciousTLDs       []string `yaml:"suspicious_tlds"`
	ShortenerHosts       []string `yaml:"shortener_hosts"`
	RedirectParams       []string `yaml:"redirect_params"`
	SuspiciousPathWords  []string `yaml:"suspicious_path_words"`
	SuspiciousExtensions []string `yaml:"suspicious_extensions"`

	// Homoglyphs maps a real character to its common lookalikes.
	Homoglyphs map[string][]string `yaml:"homoglyphs"`

	// TyposquatVariants maps a brand to known misspelled variants.
	TyposquatVariants map[string][]string `yaml:"typosquat_variants"`

	// PhrasePatterns are regex sources for multi-word phishing phrases
	// ("verify.*account"). Compiled once into phraseRes.
	PhrasePatterns []string `yaml:"phrase_patterns"`

	phraseRes []*regexp.Regexp
}

var (
	defaultConfig *Config
	defaultOnce   sync.Once
)

// Default returns the compiled-in configuration (singleton).
func Default() *Config {
	defaultOnce.Do(func() {
		defaultConfig = newDefaults()
		defaultConfig.compile()
	})
	return defaultConfig
}

// LoadFile reads a YAML override file and merges any non-empty list
// over the defaults. Returns a fresh Config; the default singleton is
// never touched.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trust config: %w", err)
	}
	overlay := &Config{}
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, fmt.Errorf("parse trust config: %w", err)
	}

	cfg := newDefaults()
	cfg.merge(overlay)
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		EducationalTLDs: []string{
			".edu", ".ac.in", ".edu.in", ".ac.uk", ".edu.au",
			".edu.sg", ".ac.jp", ".ac.nz",
		},
		GovernmentTLDs: []string{
			".gov", ".gov.in", ".nic.in", ".gov.uk", ".gov.au",
			".gov.sg", ".mil", ".gc.ca",
		},
		NonprofitTLDs: []string{".org", ".ngo", ".org.in", ".org.uk"},
		CountryTLDs: []string{
			".in", ".uk", ".au", ".ca", ".sg", ".us", ".jp", ".de",
			".fr", ".nz", ".ie", ".ch", ".nl", ".se", ".no", ".eu",
		},
		TrustedOrgs: []string{
			"google", "microsoft", "apple", "amazon", "paypal",
			"github", "wikipedia", "mozilla", "netflix", "linkedin",
			"salesforce", "cloudflare", "dropbox",
		},
		TrustedDomains: []string{
			"google.com", "youtube.com", "facebook.com", "amazon.com",
			"twitter.com", "instagram.com", "linkedin.com",
			"microsoft.com", "apple.com", "github.com",
			"stackoverflow.com", "reddit.com", "wikipedia.org",
			"netflix.com", "paypal.com", "mozilla.org",
		},
		LegitimateSubdomains: []string{
			"www", "mail", "webmail", "portal", "api", "docs",
			"accounts", "account", "login", "signin", "app", "console",
			"drive", "blog", "shop", "support", "dev", "m",
		},
		PhishingKeywords: []string{
			"login", "verify", "secure", "account", "update", "bank",
		},
		BankingKeywords: []string{
			"bank", "banking", "netbanking", "credit", "debit", "card",
			"payment", "wallet", "upi",
		},
		UrgencyKeywords: []string{
			"urgent", "immediately", "asap", "expire", "expires",
			"expired", "limited", "hurry", "act now", "quick", "fast",
			"deadline", "suspend", "suspended", "lock", "locked",
			"block", "blocked",
		},
		TrustKeywords: []string{
			"verify", "confirm", "validate", "update", "secure",
			"protect", "alert", "warning", "notice", "important",
			"critical", "attention",
		},
		FinancialKeywords: []string{
			"account", "bank", "credit", "card", "payment", "billing",
			"invoice", "transaction", "refund", "claim", "reward",
			"prize", "won", "winner", "free", "bonus", "cash", "money",
		},
		ActionKeywords: []string{
			"click", "download", "install", "open", "view", "access",
			"sign in", "login", "signin", "log in", "enter", "submit",
		},
		BrandNames: []string{
			"paypal", "amazon", "ebay", "apple", "microsoft", "google",
			"facebook", "netflix", "twitter", "irs", "usps", "fedex",
			"dhl",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top",
			".work", ".click", ".pw", ".cc",
		},
		ShortenerHosts: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly",
			"is.gd", "buff.ly", "rebrand.ly",
		},
		RedirectParams: []string{
			"redirect", "return", "continue", "next", "url", "goto",
		},
		SuspiciousPathWords: []string{
			"login", "signin", "verify", "confirm", "update", "secure",
			"account", "banking",
		},
		SuspiciousExtensions: []string{
			".exe", ".zip", ".rar", ".scr", ".bat", ".cmd", ".vbs",
		},
		Homoglyphs: map[string][]string{
			"o": {"0"},
			"l": {"1", "i", "|"},
			"i": {"1", "l"},
			"a": {"@", "4"},
			"e": {"3"},
			"s": {"5", "$"},
			"g": {"9"},
			"b": {"8"},
		},
		TyposquatVariants: map[string][]string{
			"paypal":    {"paypa1", "paypai", "paypa|", "paypol"},
			"amazon":    {"amaz0n", "amazom", "arnazon"},
			"google":    {"goog1e", "gooogle", "googie"},
			"facebook":  {"faceb00k", "facebok", "faceboook"},
			"microsoft": {"micros0ft", "microsft", "rnicrosoft"},
			"apple":     {"app1e", "appl3", "appie"},
			"netflix":   {"netf1ix", "netfiix"},
		},
		PhrasePatterns: []string{
			`verify.*account`,
			`confirm.*identity`,
			`unusual.*activity`,
			`suspend.*account`,
			`update.*payment`,
			`claim.*prize`,
			`won.*\$`,
			`act.*now`,
			`limited.*time`,
			`click.*here.*(?:verify|confirm|update)`,
		},
	}
}

// merge overlays every non-empty field of o. Lists replace wholesale;
// partial list merging would make operator overrides order-dependent.
func (c *Config) merge(o *Config) {
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&c.EducationalTLDs, o.EducationalTLDs)
	replace(&c.GovernmentTLDs, o.GovernmentTLDs)
	replace(&c.NonprofitTLDs, o.NonprofitTLDs)
	replace(&c.CountryTLDs, o.CountryTLDs)
	replace(&c.TrustedOrgs, o.TrustedOrgs)
	replace(&c.TrustedDomains, o.TrustedDomains)
	replace(&c.LegitimateSubdomains, o.LegitimateSubdomains)
	replace(&c.PhishingKeywords, o.PhishingKeywords)
	replace(&c.BankingKeywords, o.BankingKeywords)
	replace(&c.UrgencyKeywords, o.UrgencyKeywords)
	replace(&c.TrustKeywords, o.TrustKeywords)
	replace(&c.FinancialKeywords, o.FinancialKeywords)
	replace(&c.ActionKeywords, o.ActionKeywords)
	replace(&c.BrandNames, o.BrandNames)
	replace(&c.SuspiciousTLDs, o.SuspiciousTLDs)
	replace(&c.ShortenerHosts, o.ShortenerHosts)
	replace(&c.RedirectParams, o.RedirectParams)
	replace(&c.SuspiciousPathWords, o.SuspiciousPathWords)
	replace(&c.SuspiciousExtensions, o.SuspiciousExtensions)
	replace(&c.PhrasePatterns, o.PhrasePatterns)
	if len(o.Homoglyphs) > 0 {
		c.Homoglyphs = o.Homoglyphs
	}
	if len(o.TyposquatVariants) > 0 {
		c.TyposquatVariants = o.TyposquatVariants
	}
}

func (c *Config) compile() error {
	c.phraseRes = make([]*regexp.Regexp, 0, len(c.PhrasePatterns))
	for _, src := range c.PhrasePatterns {
		re, err := regexp.Compile(src)
		if err != nil {
			return fmt.Errorf("compile phrase pattern %q: %w", src, err)
		}
		c.phraseRes = append(c.phraseRes, re)
	}
	return nil
}

// PhraseRegexps returns the compiled phrase patterns.
func (c *Config) PhraseRegexps() []*regexp.Regexp {
	return c.phraseRes
}

// hostMatchesSuffix reports whether host ends with the dotted suffix,
// either exactly ("example.edu" on ".edu" when host is "something.edu")
// or as the bare suffix registry itself.
func hostMatchesSuffix(host, suffix string) bool {
	return strings.HasSuffix(host, suffix) || host == strings.TrimPrefix(suffix, ".")
}

func matchesAnySuffix(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if hostMatchesSuffix(host, s) {
			return true
		}
	}
	return false
}

// IsEducationalTLD reports an educational suffix match.
func (c *Config) IsEducationalTLD(host string) bool {
	return matchesAnySuffix(host, c.EducationalTLDs)
}

// IsGovernmentTLD reports a government suffix match.
func (c *Config) IsGovernmentTLD(host string) bool {
	return matchesAnySuffix(host, c.GovernmentTLDs)
}

// IsNonprofitTLD reports a nonprofit suffix match.
func (c *Config) IsNonprofitTLD(host string) bool {
	return matchesAnySuffix(host, c.NonprofitTLDs)
}

// IsCountryTLD reports a country-code suffix match. The list is
// curated: free giveaway ccTLDs (.tk, .ml, ...) live in SuspiciousTLDs
// instead and are deliberately absent here.
func (c *Config) IsCountryTLD(host string) bool {
	return matchesAnySuffix(host, c.CountryTLDs)
}

// MatchTrustedOrg returns the first trusted organization name appearing
// as a substring of the host, or "".
func (c *Config) MatchTrustedOrg(host string) string {
	for _, org := range c.TrustedOrgs {
		if strings.Contains(host, org) {
			return org
		}
	}
	return ""
}

// IsTrustedDomain reports whether host is exactly a trusted domain or a
// subdomain of one.
func (c *Config) IsTrustedDomain(host string) bool {
	for _, d := range c.TrustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// IsLegitimateSubdomain reports whether the first host label is a known
// infrastructure prefix.
func (c *Config) IsLegitimateSubdomain(label string) bool {
	for _, p := range c.LegitimateSubdomains {
		if label == p {
			return true
		}
	}
	return false
}
