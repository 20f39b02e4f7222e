package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/phishguard/phishguard/pkg/httputil"
	"github.com/phishguard/phishguard/pkg/trust"
)

// ErrLookupOpen is returned while the breaker is cooling down after
// repeated registry failures.
var ErrLookupOpen = errors.New("registration lookup circuit open")

var reDigitRun = regexp.MustCompile(`\d{3,}`)

// AgeChecker estimates domain registration age via RDAP, falling back
// to a local heuristic when the registry is slow, failing, or the
// breaker is open. Newly registered domains correlate strongly with
// phishing campaigns.
type AgeChecker struct {
	trust    *trust.Config
	client   *http.Client
	baseURL  string
	inflight *httputil.Semaphore

	// Minimal breaker: consecutive failures open it, a cooldown
	// half-opens it again. Registration age is advisory, so a full
	// state machine would be overkill here.
	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

const (
	breakerFailureThreshold = 5
	breakerCooldown         = 30 * time.Second
	maxInflightLookups      = 16
)

// NewAgeChecker returns an AgeChecker against the public RDAP
// bootstrap service. cfg may be nil for defaults.
func NewAgeChecker(cfg *trust.Config) *AgeChecker {
	if cfg == nil {
		cfg = trust.Default()
	}
	return &AgeChecker{
		trust:    cfg,
		client:   httputil.FastClient(),
		baseURL:  "https://rdap.org/domain/",
		inflight: httputil.NewSemaphore(maxInflightLookups),
	}
}

type rdapResponse struct {
	Events []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
}

// Registration fetches the registration date for host. Errors include
// breaker-open, timeouts, and hosts the registry does not know.
func (a *AgeChecker) Registration(ctx context.Context, host string) (time.Time, error) {
	if !a.allow() {
		return time.Time{}, ErrLookupOpen
	}
	if !a.inflight.TryAcquire() {
		return time.Time{}, fmt.Errorf("registration lookup capacity exhausted")
	}
	defer a.inflight.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+host, nil)
	if err != nil {
		return time.Time{}, err
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.recordFailure()
		return time.Time{}, err
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		// 404 means the registry answered; only server-side failures
		// count against the breaker.
		if resp.StatusCode >= 500 {
			a.recordFailure()
		} else {
			a.recordSuccess()
		}
		return time.Time{}, fmt.Errorf("rdap status %d for %s", resp.StatusCode, host)
	}

	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxResponseSize)
	if err != nil {
		a.recordFailure()
		return time.Time{}, err
	}
	a.recordSuccess()

	var parsed rdapResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return time.Time{}, fmt.Errorf("parse rdap response: %w", err)
	}
	for _, ev := range parsed.Events {
		if ev.EventAction == "registration" {
			t, err := time.Parse(time.RFC3339, ev.EventDate)
			if err != nil {
				return time.Time{}, fmt.Errorf("parse registration date: %w", err)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no registration event for %s", host)
}

// AgeRisk never fails: it converts registration age into a [0, 0.20]
// risk contribution, substituting the local heuristic whenever the
// registry cannot answer in time.
func (a *AgeChecker) AgeRisk(ctx context.Context, host string) float64 {
	registered, err := a.Registration(ctx, host)
	if err != nil {
		return a.localEstimate(host)
	}
	age := time.Since(registered)
	switch {
	case age < 30*24*time.Hour:
		return 0.20
	case age < 180*24*time.Hour:
		return 0.10
	default:
		return 0.0
	}
}

// localEstimate mirrors the risk scale of the registry answer using
// only the host string: allowlisted domains are old by definition, and
// long digit runs or current-year strings suggest a throwaway
// registration.
func (a *AgeChecker) localEstimate(host string) float64 {
	if a.trust.IsTrustedDomain(host) {
		return 0.0
	}
	if reDigitRun.MatchString(host) {
		return 0.20
	}
	year := time.Now().Year()
	if strings.Contains(host, fmt.Sprint(year)) || strings.Contains(host, fmt.Sprint(year-1)) {
		return 0.15
	}
	return 0.0
}

func (a *AgeChecker) allow() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures < breakerFailureThreshold {
		return true
	}
	if time.Now().After(a.openUntil) {
		// Half-open: let one attempt through.
		a.failures = breakerFailureThreshold - 1
		return true
	}
	return false
}

func (a *AgeChecker) recordFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures++
	if a.failures >= breakerFailureThreshold {
		a.openUntil = time.Now().Add(breakerCooldown)
	}
}

func (a *AgeChecker) recordSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = 0
}
