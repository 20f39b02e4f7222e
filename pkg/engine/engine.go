// Package engine coordinates one scoring call: feature extraction,
// classifier inference, the four heuristic modules run concurrently,
// ensemble combination, thresholding and explanation. Every call is
// stateless; the only shared state is the immutable trust
// configuration and the loaded classifier.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phishguard/phishguard/pkg/classifier"
	"github.com/phishguard/phishguard/pkg/features"
	"github.com/phishguard/phishguard/pkg/heuristics"
	"github.com/phishguard/phishguard/pkg/trust"
	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// AuditEntry is what the append-only audit sink receives per call.
type AuditEntry struct {
	Timestamp      time.Time      `json:"timestamp"`
	ScanID         string         `json:"scan_id"`
	URL            string         `json:"url"`
	Classification Classification `json:"classification"`
	Probability    float64        `json:"probability"`
	RiskLevel      RiskLevel      `json:"risk_level"`
}

// AuditSink records every completed scan. Implementations must not
// block the scoring path; slow sinks should buffer internally.
type AuditSink interface {
	Record(e AuditEntry)
}

// Report is the full result of one scan.
type Report struct {
	ScanID         string                            `json:"scan_id"`
	Timestamp      time.Time                         `json:"timestamp"`
	URL            string                            `json:"url"`
	Classification Classification                    `json:"classification"`
	Probability    float64                           `json:"probability"`
	RiskLevel      RiskLevel                         `json:"risk_level"`
	ModuleScores   map[string]heuristics.ModuleScore `json:"module_scores"`
	Explanation    []ExplanationEntry                `json:"explanation"`
	ModelSchema    int                               `json:"model_schema_version"`
	Degraded       bool                              `json:"degraded"`
	ElapsedMS      int64                             `json:"elapsed_ms"`

	// RegistrationAgeRisk is an advisory annotation filled in by the
	// serving layer when the registration-age lookup is enabled. It
	// never feeds the verdict.
	RegistrationAgeRisk *float64 `json:"registration_age_risk,omitempty"`
}

// Config assembles an Engine. Zero-value fields get sane defaults.
type Config struct {
	Trust      *trust.Config
	Classifier *classifier.Classifier
	Analyzers  []heuristics.Analyzer
	Weights    Weights
	Thresholds Thresholds
	Audit      AuditSink
}

// Engine is safe for concurrent use.
type Engine struct {
	trust      *trust.Config
	extractor  *features.Extractor
	clf        *classifier.Classifier
	analyzers  []heuristics.Analyzer
	weights    Weights
	thresholds Thresholds
	explainer  *Explainer
	audit      AuditSink
}

// New validates cfg and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Trust == nil {
		cfg.Trust = trust.Default()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = classifier.NewDegraded()
	}
	if cfg.Analyzers == nil {
		cfg.Analyzers = heuristics.Defaults(cfg.Trust, nil)
	}
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	return &Engine{
		trust:      cfg.Trust,
		extractor:  features.NewExtractor(cfg.Trust),
		clf:        cfg.Classifier,
		analyzers:  cfg.Analyzers,
		weights:    cfg.Weights,
		thresholds: cfg.Thresholds,
		explainer:  NewExplainer(cfg.Trust),
		audit:      cfg.Audit,
	}, nil
}

// Ready reports whether the classifier is loaded. A non-ready engine
// still scans, at neutral probability with degraded reports.
func (e *Engine) Ready() bool { return e.clf.Ready() }

// Scan scores one URL. The error path is reserved for malformed input;
// every scoring-side failure degrades instead of failing the call.
func (e *Engine) Scan(ctx context.Context, raw string) (*Report, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := urlinfo.Validate(raw); err != nil {
		return nil, err
	}
	u := urlinfo.Parse(raw)

	// Heuristic modules run concurrently while the classifier path
	// proceeds on this goroutine. Each module is independent; no
	// ordering between them matters.
	moduleResults := make([]heuristics.ModuleScore, len(e.analyzers))
	var wg sync.WaitGroup
	for i, a := range e.analyzers {
		wg.Add(1)
		go func(i int, a heuristics.Analyzer) {
			defer wg.Done()
			moduleResults[i] = a.Analyze(u)
		}(i, a)
	}

	vector := e.extractor.Extract(u)
	prob := e.clf.Score(vector)
	degraded := !e.clf.Ready()

	wg.Wait()

	modules := make(map[string]heuristics.ModuleScore, len(e.analyzers)+1)
	for i, a := range e.analyzers {
		modules[a.Name()] = moduleResults[i]
	}

	clfStatus := heuristics.StatusOK
	if degraded {
		clfStatus = heuristics.StatusUnavailable
	}
	modules[ModuleClassifier] = heuristics.ModuleScore{
		Score:    prob,
		Status:   clfStatus,
		Evidence: []string{"primary decision driver"},
	}

	final := Combine(prob, modules, e.weights)
	class, risk := e.thresholds.Classify(final)

	report := &Report{
		ScanID:         uuid.NewString(),
		Timestamp:      start.UTC(),
		URL:            raw,
		Classification: class,
		Probability:    final,
		RiskLevel:      risk,
		ModuleScores:   modules,
		Explanation:    e.explainer.Explain(u, vector),
		ModelSchema:    e.clf.Version(),
		Degraded:       degraded,
		ElapsedMS:      time.Since(start).Milliseconds(),
	}

	if e.audit != nil {
		e.audit.Record(AuditEntry{
			Timestamp:      time.Now().UTC(),
			ScanID:         report.ScanID,
			URL:            raw,
			Classification: class,
			Probability:    final,
			RiskLevel:      risk,
		})
	}

	return report, nil
}
