package heuristics

import (
	"strings"
	"testing"

	"github.com/phishguard/phishguard/pkg/urlinfo"
)

func analyzeLexical(t *testing.T, raw string) ModuleScore {
	t.Helper()
	return NewLexical(nil).Analyze(urlinfo.Parse(raw))
}

func hasEvidence(ms ModuleScore, substr string) bool {
	for _, e := range ms.Evidence {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestLexicalScoreRange(t *testing.T) {
	urls := []string{
		"https://example.com",
		"http://paypal-verify-account.tk/login",
		"http://192.168.1.100:8443/a//b@c" + strings.Repeat("/x", 80),
	}
	for _, raw := range urls {
		ms := analyzeLexical(t, raw)
		if ms.Score < 0 || ms.Score > 1 {
			t.Errorf("score for %q = %v, out of [0,1]", raw, ms.Score)
		}
	}
}

func TestLexicalSuspiciousShape(t *testing.T) {
	ms := analyzeLexical(t, "http://paypal-verify-account.tk/login")

	if !hasEvidence(ms, "suspicious TLD: .tk") {
		t.Errorf("expected suspicious TLD flag, got %v", ms.Evidence)
	}
	if !hasEvidence(ms, "suspicious keyword") {
		t.Errorf("expected suspicious keyword flag, got %v", ms.Evidence)
	}
	if ms.Score < 0.3 {
		t.Errorf("score = %v, expected a clearly elevated score", ms.Score)
	}
	if ms.Status != StatusOK {
		t.Errorf("status = %v, want ok", ms.Status)
	}
}

func TestLexicalIPHost(t *testing.T) {
	ms := analyzeLexical(t, "http://192.168.1.100/login")
	if !hasEvidence(ms, "IP address") {
		t.Errorf("expected IP host flag, got %v", ms.Evidence)
	}
}

func TestLexicalAtSymbol(t *testing.T) {
	ms := analyzeLexical(t, "http://trusted.com@evil.example/login")
	if !hasEvidence(ms, "@ symbol") {
		t.Errorf("expected @ flag, got %v", ms.Evidence)
	}
}

func TestLexicalTrustAdjustment(t *testing.T) {
	// accounts.google.com contains "account", so the keyword rule
	// fires; the trusted-domain discount must then halve the score and
	// say so.
	ms := analyzeLexical(t, "https://accounts.google.com/signin")
	if !hasEvidence(ms, "trust adjustment") {
		t.Fatalf("expected trust adjustment note, got %v", ms.Evidence)
	}
	if ms.Score >= 0.10 {
		t.Errorf("trusted-domain score = %v, expected halved keyword contribution", ms.Score)
	}
	if ms.Score == 0 {
		t.Error("lexical trust is mitigating, not absolute; score should stay non-zero")
	}
}

func TestLexicalUUIDDiscount(t *testing.T) {
	base := analyzeLexical(t, "http://login-portal.example.xyz/session")
	withUUID := analyzeLexical(t, "http://login-portal.example.xyz/session/a1b2c3d4-0000-1111-2222-333344445555")
	if withUUID.Score >= base.Score {
		t.Errorf("UUID path must discount the score: %v >= %v", withUUID.Score, base.Score)
	}
	if hasEvidence(withUUID, "uuid") || hasEvidence(withUUID, "UUID") {
		t.Error("UUID discount must not add a flag")
	}
}

func TestLexicalHomoglyph(t *testing.T) {
	ms := analyzeLexical(t, "http://paypa1.example.com/login")
	if !hasEvidence(ms, "homoglyph") {
		t.Errorf("expected homoglyph flag for paypa1, got %v", ms.Evidence)
	}
}

func TestLexicalHomoglyphUnicodeHost(t *testing.T) {
	// Fullwidth lookalikes must fold onto their ASCII skeletons before
	// the brand scan; the raw host never contains "paypa1".
	ms := analyzeLexical(t, "http://ｐａｙｐａ１.com/login")
	if !hasEvidence(ms, "homoglyph") {
		t.Errorf("expected homoglyph flag for fullwidth host, got %v", ms.Evidence)
	}
	if !hasEvidence(ms, "paypal") {
		t.Errorf("evidence should name the resembled brand, got %v", ms.Evidence)
	}
}

func TestLexicalNonStandardPort(t *testing.T) {
	ms := analyzeLexical(t, "http://example.com:8443/")
	if !hasEvidence(ms, "non-standard port") {
		t.Errorf("expected port flag, got %v", ms.Evidence)
	}
	clean := analyzeLexical(t, "https://example.com:443/")
	if hasEvidence(clean, "non-standard port") {
		t.Error("443 must not be flagged")
	}
}

func TestEntropy(t *testing.T) {
	if e := entropy(""); e != 0 {
		t.Errorf("entropy of empty string = %v", e)
	}
	if e := entropy("aaaa"); e != 0 {
		t.Errorf("entropy of uniform string = %v, want 0", e)
	}
	low := entropy("google.com")
	high := entropy("xk9qz2p7vw4jm3ht8rn5.com")
	if high <= low {
		t.Errorf("random-looking host must have higher entropy: %v <= %v", high, low)
	}
}
