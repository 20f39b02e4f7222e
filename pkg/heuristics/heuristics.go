// Package heuristics implements the four rule-based URL risk modules:
// lexical structure, domain reputation, behavioral/encoding patterns,
// and social-engineering language. Every module scores independently in
// [0,1] and never consults another module or the classifier.
//
// Each module ships two interchangeable implementations of the same
// Analyzer interface: the primary scorer and a simplified fallback.
// WithFallback pairs them so a panicking primary degrades to the
// fallback score instead of failing the scan.
package heuristics

import (
	"fmt"

	"github.com/phishguard/phishguard/pkg/urlinfo"
)

// Module names, stable across the API and audit records.
const (
	NameLexical    = "lexical"
	NameReputation = "reputation"
	NameBehavior   = "behavior"
	NameLanguage   = "language"
)

// Status describes how a module score was produced.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFallback    Status = "fallback"
	StatusUnavailable Status = "unavailable"
)

// ModuleScore is one module's verdict for one URL.
type ModuleScore struct {
	Score    float64  `json:"score"`
	Status   Status   `json:"status"`
	Evidence []string `json:"evidence,omitempty"`
}

// Analyzer scores a single parsed URL. Implementations must be
// stateless apart from their read-only configuration so concurrent
// scans can share one instance.
type Analyzer interface {
	Name() string
	Analyze(u *urlinfo.URL) ModuleScore
}

type safeAnalyzer struct {
	primary  Analyzer
	fallback Analyzer
}

// WithFallback wraps primary so any panic inside it is converted into
// the fallback's score with Status set to StatusFallback. The scan as a
// whole never aborts because one module misbehaved.
func WithFallback(primary, fallback Analyzer) Analyzer {
	return &safeAnalyzer{primary: primary, fallback: fallback}
}

func (s *safeAnalyzer) Name() string { return s.primary.Name() }

func (s *safeAnalyzer) Analyze(u *urlinfo.URL) (ms ModuleScore) {
	defer func() {
		if r := recover(); r != nil {
			ms = s.fallback.Analyze(u)
			ms.Status = StatusFallback
			ms.Evidence = append(ms.Evidence,
				fmt.Sprintf("primary scorer failed (%v), simplified estimate used", r))
		}
	}()
	return s.primary.Analyze(u)
}

func capped(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0 {
		return 0
	}
	return score
}
