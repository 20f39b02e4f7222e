package heuristics

import (
	"testing"

	"github.com/phishguard/phishguard/pkg/urlinfo"
)

func analyzeBehavior(t *testing.T, raw string) ModuleScore {
	t.Helper()
	return NewBehavior(nil).Analyze(urlinfo.Parse(raw))
}

func TestBehaviorShortener(t *testing.T) {
	ms := analyzeBehavior(t, "http://bit.ly/3xYz")
	if !hasEvidence(ms, "shortener") {
		t.Errorf("expected shortener flag, got %v", ms.Evidence)
	}

	clean := analyzeBehavior(t, "https://bitly-blog.example.com/")
	if hasEvidence(clean, "shortener") {
		t.Error("shortener match must be a host match, not a substring of an unrelated host")
	}
}

func TestBehaviorSuspiciousPath(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/login/verify")
	if !hasEvidence(ms, "suspicious path elements") {
		t.Errorf("expected path flag, got %v", ms.Evidence)
	}
	// Per-keyword contribution is capped.
	many := analyzeBehavior(t, "https://example.com/login/signin/verify/confirm/update/secure")
	if many.Score > 1 {
		t.Errorf("score %v exceeds cap", many.Score)
	}
}

func TestBehaviorRedirectParams(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/go?redirect=https://evil.example")
	if !hasEvidence(ms, "redirect-style query parameters") {
		t.Errorf("expected redirect flag, got %v", ms.Evidence)
	}
}

func TestBehaviorRedirectChain(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/r?a=http://one.example&b=http://two.example")
	if !hasEvidence(ms, "redirect chain") {
		t.Errorf("expected chain flag, got %v", ms.Evidence)
	}
}

func TestBehaviorDangerousSchemes(t *testing.T) {
	js := analyzeBehavior(t, "https://example.com/x?v=javascript:alert(1)")
	if !hasEvidence(js, "JavaScript protocol") {
		t.Errorf("expected javascript flag, got %v", js.Evidence)
	}
}

func TestBehaviorSuspiciousExtension(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/invoice.exe")
	if !hasEvidence(ms, "suspicious file extension: .exe") {
		t.Errorf("expected extension flag, got %v", ms.Evidence)
	}
}

func TestBehaviorEncodingDensity(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/p?q=%41%42%43%44%45%46%47")
	if !hasEvidence(ms, "heavy URL encoding") {
		t.Errorf("expected encoding flag, got %v", ms.Evidence)
	}
}

func TestBehaviorCleanURL(t *testing.T) {
	ms := analyzeBehavior(t, "https://example.com/about")
	if ms.Score != 0 {
		t.Errorf("clean URL scored %v: %v", ms.Score, ms.Evidence)
	}
}
