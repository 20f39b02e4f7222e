package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/phishguard/phishguard/pkg/classifier"
	"github.com/phishguard/phishguard/pkg/heuristics"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

type captureSink struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (s *captureSink) Record(e AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func newTestEngine(t *testing.T, sink AuditSink) *Engine {
	t.Helper()
	eng, err := New(Config{
		Classifier: classifier.LoadDefault(),
		Audit:      sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func scan(t *testing.T, eng *Engine, raw string) *Report {
	t.Helper()
	r, err := eng.Scan(context.Background(), raw)
	if err != nil {
		t.Fatalf("Scan(%q): %v", raw, err)
	}
	return r
}

func TestScanTrustedHost(t *testing.T) {
	eng := newTestEngine(t, nil)
	r := scan(t, eng, "https://accounts.google.com")

	if r.Classification != ClassLegitimate || r.RiskLevel != RiskLow {
		t.Errorf("got %v/%v, want Legitimate/Low (p=%v)", r.Classification, r.RiskLevel, r.Probability)
	}
	if r.Probability >= 0.40 {
		t.Errorf("probability %v too high for a trusted host", r.Probability)
	}
	if rep := r.ModuleScores[heuristics.NameReputation]; rep.Score != 0 {
		t.Errorf("reputation score = %v, want 0 for a trusted domain", rep.Score)
	}
	if r.Degraded {
		t.Error("report marked degraded with a loaded model")
	}
}

func TestScanPhishingLookalike(t *testing.T) {
	eng := newTestEngine(t, nil)
	r := scan(t, eng, "http://paypal-verify-account.tk/login")

	if r.Classification != ClassPhishing || r.RiskLevel != RiskHigh {
		t.Errorf("got %v/%v (p=%v), want Phishing/High", r.Classification, r.RiskLevel, r.Probability)
	}
	if r.Probability < 0.75 {
		t.Errorf("probability %v below the phishing band", r.Probability)
	}
	lex := r.ModuleScores[heuristics.NameLexical]
	if lex.Score == 0 || lex.Status != heuristics.StatusOK {
		t.Errorf("lexical module = %+v, want a nonzero ok score", lex)
	}
}

func TestScanIPHost(t *testing.T) {
	eng := newTestEngine(t, nil)
	r := scan(t, eng, "http://192.168.1.100/login")

	if r.Classification != ClassPhishing {
		t.Errorf("got %v (p=%v), want Phishing", r.Classification, r.Probability)
	}
	found := false
	for _, e := range r.Explanation {
		if e.Kind == EvidenceRisk && strings.Contains(e.Text, "IP address") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing IP rationale: %v", r.Explanation)
	}
}

func TestScanInstitutionalLongURL(t *testing.T) {
	eng := newTestEngine(t, nil)
	r := scan(t, eng, "https://www.university.edu/research/departments/computer-science/faculty/publications/2024/machine-learning")

	if r.Classification != ClassLegitimate {
		t.Errorf("got %v (p=%v), want Legitimate despite the long URL", r.Classification, r.Probability)
	}
	for _, e := range r.Explanation {
		if e.Kind == EvidenceRisk {
			t.Errorf("unexpected risk entry for institutional domain: %q", e.Text)
		}
	}
}

func TestScanDeterministic(t *testing.T) {
	eng := newTestEngine(t, nil)
	first := scan(t, eng, "http://paypal-verify-account.tk/login")
	for i := 0; i < 5; i++ {
		r := scan(t, eng, "http://paypal-verify-account.tk/login")
		if r.Probability != first.Probability || r.Classification != first.Classification {
			t.Fatalf("run %d diverged: %v/%v vs %v/%v",
				i, r.Classification, r.Probability, first.Classification, first.Probability)
		}
	}
}

func TestScanRejectsMalformedInput(t *testing.T) {
	eng := newTestEngine(t, nil)
	for _, raw := range []string{"", "   ", "ftp://example.com", strings.Repeat("a", 3000)} {
		if _, err := eng.Scan(context.Background(), raw); err == nil {
			t.Errorf("Scan(%q) accepted invalid input", raw)
		}
	}
}

func TestScanCancelledContext(t *testing.T) {
	eng := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Scan(ctx, "https://example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestScanAuditTrail(t *testing.T) {
	sink := &captureSink{}
	eng := newTestEngine(t, sink)
	r := scan(t, eng, "https://example.com/docs")

	if len(sink.entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(sink.entries))
	}
	e := sink.entries[0]
	if e.ScanID != r.ScanID || e.URL != r.URL || e.Classification != r.Classification {
		t.Errorf("audit entry %+v does not match report", e)
	}
	if e.Timestamp.IsZero() {
		t.Error("audit entry missing timestamp")
	}
}

func TestScanDegradedWithoutModel(t *testing.T) {
	eng, err := New(Config{Classifier: classifier.NewDegraded()})
	if err != nil {
		t.Fatal(err)
	}
	if eng.Ready() {
		t.Error("engine without model reports ready")
	}
	r := scan(t, eng, "https://example.com")
	if !r.Degraded {
		t.Error("report not marked degraded")
	}
	if r.Probability != classifier.NeutralProbability {
		t.Errorf("probability = %v, want neutral %v", r.Probability, classifier.NeutralProbability)
	}
	if r.Classification != ClassSuspicious {
		t.Errorf("neutral probability must land Suspicious, got %v", r.Classification)
	}
	cs := r.ModuleScores[ModuleClassifier]
	if cs.Status != heuristics.StatusUnavailable {
		t.Errorf("classifier module status = %v, want unavailable", cs.Status)
	}
}

func TestScanBlendedWeights(t *testing.T) {
	eng, err := New(Config{
		Classifier: classifier.LoadDefault(),
		Weights: Weights{
			ModuleClassifier:       1.0,
			heuristics.NameLexical: 1.0,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := scan(t, eng, "http://paypal-verify-account.tk/login")

	lex := r.ModuleScores[heuristics.NameLexical].Score
	clf := r.ModuleScores[ModuleClassifier].Score
	if want := (lex + clf) / 2; math.Abs(r.Probability-want) > 1e-9 {
		t.Errorf("blended probability = %v, want %v", r.Probability, want)
	}
}

func TestNewRejectsBadThresholds(t *testing.T) {
	_, err := New(Config{Thresholds: Thresholds{Phishing: 0.2, Suspicious: 0.8}})
	if err == nil {
		t.Error("New accepted inverted thresholds")
	}
}

func TestScanReportShape(t *testing.T) {
	eng := newTestEngine(t, nil)
	r := scan(t, eng, "https://example.com")

	if r.ScanID == "" {
		t.Error("missing scan id")
	}
	if r.Timestamp.IsZero() {
		t.Error("missing timestamp")
	}
	if r.ModelSchema != 1 {
		t.Errorf("model schema = %d, want 1", r.ModelSchema)
	}
	if r.URL != "https://example.com" {
		t.Errorf("URL = %q", r.URL)
	}
	for _, name := range []string{
		heuristics.NameLexical, heuristics.NameReputation,
		heuristics.NameBehavior, heuristics.NameLanguage, ModuleClassifier,
	} {
		if _, ok := r.ModuleScores[name]; !ok {
			t.Errorf("module %q missing from report", name)
		}
	}
	if len(r.Explanation) == 0 {
		t.Error("empty explanation")
	}
	if r.ElapsedMS < 0 {
		t.Errorf("elapsed %d", r.ElapsedMS)
	}
}

// Keeps the engine honest about urlinfo's contract: Scan must not be
// reachable with a URL Validate rejects.
func TestScanValidateParity(t *testing.T) {
	for _, raw := range []string{"https://example.com", "http://192.168.1.100/login"} {
		if err := urlinfo.Validate(raw); err != nil {
			t.Fatalf("Validate(%q) = %v", raw, err)
		}
	}
}
