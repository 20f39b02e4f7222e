// Package urlinfo parses and validates URLs for the scoring engine.
// Every analyzer consumes the same parsed view so host handling
// (lowercasing, port stripping, label splitting) happens exactly once.
package urlinfo

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// MaxURLLength mirrors the common browser/server limit. Longer inputs
// are rejected before any module runs.
const MaxURLLength = 2048

// Validation errors surfaced to callers. These indicate the input never
// entered scoring; they are not verdicts.
var (
	ErrEmpty      = errors.New("url is empty")
	ErrScheme     = errors.New("url must start with http:// or https://")
	ErrWhitespace = errors.New("url contains whitespace")
	ErrTooLong    = fmt.Errorf("url exceeds maximum length of %d characters", MaxURLLength)
)

// reIPv4Host matches four dot-separated 1-3 digit groups. Deliberately
// loose (no octet range check) - this is the shape the feature schema
// was trained against.
var reIPv4Host = regexp.MustCompile(`^(?:\d{1,3}\.){3}\d{1,3}$`)

// URL is the parsed, normalized view of a raw URL string.
type URL struct {
	Raw    string // original input, untouched
	Scheme string // lowercased
	Host   string // lowercased, port stripped
	Port   string // empty when no explicit port
	Path   string // lowercased
	Query  string // lowercased raw query string

	// Labels are the dot-separated host labels, e.g.
	// ["accounts", "google", "com"]. Empty for an empty host.
	Labels []string

	// Decoded is the percent-decoded, lowercased form of the whole
	// URL, used by the language analyzer so encoded keywords are
	// still visible.
	Decoded string
}

// Validate performs the pre-flight checks from the public contract:
// non-empty, http/https scheme, no whitespace, bounded length. It does
// NOT resolve DNS - that is a best-effort reputation signal, never a
// gate.
func Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmpty
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ErrScheme
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return ErrWhitespace
	}
	if len(raw) > MaxURLLength {
		return ErrTooLong
	}
	return nil
}

// Parse builds the normalized view. It never fails for a scheme-prefixed
// input: when net/url chokes on a malformed tail, the host is recovered
// by hand so feature extraction still produces a full vector.
func Parse(raw string) *URL {
	u := &URL{Raw: raw}

	parsed, err := url.Parse(raw)
	if err == nil {
		u.Scheme = strings.ToLower(parsed.Scheme)
		host := strings.ToLower(parsed.Host)
		u.Host, u.Port = splitHostPort(host)
		u.Path = strings.ToLower(parsed.Path)
		u.Query = strings.ToLower(parsed.RawQuery)
	} else {
		// Manual recovery: scheme://host/rest
		rest := raw
		if i := strings.Index(rest, "://"); i >= 0 {
			u.Scheme = strings.ToLower(rest[:i])
			rest = rest[i+3:]
		}
		hostEnd := strings.IndexAny(rest, "/?#")
		if hostEnd < 0 {
			hostEnd = len(rest)
		}
		u.Host, u.Port = splitHostPort(strings.ToLower(rest[:hostEnd]))
		u.Path = strings.ToLower(rest[hostEnd:])
	}

	if u.Host != "" {
		u.Labels = strings.Split(u.Host, ".")
	}

	if decoded, err := url.QueryUnescape(raw); err == nil {
		u.Decoded = strings.ToLower(decoded)
	} else {
		u.Decoded = strings.ToLower(raw)
	}

	return u
}

// splitHostPort strips an explicit port, tolerating hosts without one.
func splitHostPort(host string) (string, string) {
	i := strings.LastIndex(host, ":")
	if i < 0 {
		return host, ""
	}
	// Leave IPv6 literals alone unless a port follows the bracket.
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end >= 0 && i > end {
			return host[:i], host[i+1:]
		}
		return host, ""
	}
	return host[:i], host[i+1:]
}

// IsIPLiteral reports whether the host is a dotted IPv4 literal.
func (u *URL) IsIPLiteral() bool {
	return reIPv4Host.MatchString(u.Host)
}

// SubdomainCount is the label count minus two, floored at zero:
// "a.b.example.com" has two subdomain labels.
func (u *URL) SubdomainCount() int {
	n := len(u.Labels) - 2
	if n < 0 {
		return 0
	}
	return n
}

// DisplayHost converts a punycode host back to unicode and applies
// NFKD folding so fullwidth and mathematical lookalikes collapse onto
// their ASCII skeletons before homoglyph scanning.
func (u *URL) DisplayHost() string {
	host := u.Host
	if strings.Contains(host, "xn--") {
		if decoded, err := idna.Lookup.ToUnicode(host); err == nil {
			host = decoded
		}
	}
	return strings.ToLower(norm.NFKD.String(host))
}
