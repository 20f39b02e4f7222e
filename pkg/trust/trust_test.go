package trust

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default() must return the same instance")
	}
	if len(a.PhraseRegexps()) == 0 {
		t.Error("default phrase patterns must be compiled")
	}
}

func TestSuffixMatching(t *testing.T) {
	cfg := Default()

	tests := []struct {
		host string
		fn   func(string) bool
		want bool
		desc string
	}{
		{"cs.stanford.edu", cfg.IsEducationalTLD, true, "edu"},
		{"iitb.ac.in", cfg.IsEducationalTLD, true, "ac.in"},
		{"example.com", cfg.IsEducationalTLD, false, "com is not edu"},
		{"irs.gov", cfg.IsGovernmentTLD, true, "gov"},
		{"portal.gov.uk", cfg.IsGovernmentTLD, true, "gov.uk"},
		{"wikipedia.org", cfg.IsNonprofitTLD, true, "org"},
		{"shop.co.in", cfg.IsCountryTLD, true, "in"},
		{"paypal-verify-account.tk", cfg.IsCountryTLD, false, "free giveaway TLD is not a trust signal"},
		{"sneaky.edu.example.com", cfg.IsEducationalTLD, false, "edu in the middle does not count"},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.host); got != tt.want {
			t.Errorf("%s: host %q got %v, want %v", tt.desc, tt.host, got, tt.want)
		}
	}
}

func TestIsTrustedDomain(t *testing.T) {
	cfg := Default()

	tests := []struct {
		host string
		want bool
	}{
		{"google.com", true},
		{"accounts.google.com", true},
		{"a.b.paypal.com", true},
		{"notgoogle.com", false},
		{"google.com.evil.tk", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsTrustedDomain(tt.host); got != tt.want {
			t.Errorf("IsTrustedDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestMatchTrustedOrg(t *testing.T) {
	cfg := Default()
	if org := cfg.MatchTrustedOrg("paypal-verify-account.tk"); org != "paypal" {
		t.Errorf("MatchTrustedOrg = %q, want paypal", org)
	}
	if org := cfg.MatchTrustedOrg("example.com"); org != "" {
		t.Errorf("MatchTrustedOrg = %q, want empty", org)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.yaml")
	content := []byte("trusted_domains:\n  - internal.corp\nsuspicious_tlds:\n  - \".zip\"\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !cfg.IsTrustedDomain("vpn.internal.corp") {
		t.Error("override trusted_domains not applied")
	}
	if cfg.IsTrustedDomain("google.com") {
		t.Error("lists must replace wholesale, google.com should be gone")
	}
	if len(cfg.SuspiciousTLDs) != 1 || cfg.SuspiciousTLDs[0] != ".zip" {
		t.Errorf("override suspicious_tlds not applied: %v", cfg.SuspiciousTLDs)
	}

	// Untouched lists keep their defaults.
	if len(cfg.UrgencyKeywords) == 0 {
		t.Error("unset fields must keep compiled-in defaults")
	}

	// The default singleton must be unaffected.
	if !Default().IsTrustedDomain("google.com") {
		t.Error("LoadFile must not mutate the default singleton")
	}
}

func TestLoadFileBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.yaml")
	if err := os.WriteFile(path, []byte("phrase_patterns:\n  - \"(unclosed\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("invalid phrase regex must fail loading")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/trust.yaml"); err == nil {
		t.Error("missing file must return an error")
	}
}
