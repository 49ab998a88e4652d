package expiry

import (
	"net/url"
	"strconv"
	"time"
)

const (
	// ParamExpires is the query parameter carrying the validity window in seconds.
	ParamExpires = "X-Amz-Expires"
	// ParamDate is the query parameter carrying the compact issue timestamp.
	ParamDate = "X-Amz-Date"

	// DefaultFallbackWindow matches the backend's default signing duration.
	DefaultFallbackWindow = 7 * 24 * time.Hour

	compactTimeLen = len("20060102T150405Z")
)

// At returns the absolute expiry instant of rawURL.
//
// At is a pure function of its arguments: the same rawURL and now always yield
// the same instant. When the URL does not carry a well-formed window the result
// is now+fallback (now+[DefaultFallbackWindow] when fallback is not positive),
// which is never earlier than now.
func At(rawURL string, now time.Time, fallback time.Duration) time.Time {
	if fallback <= 0 {
		fallback = DefaultFallbackWindow
	}

	expiresAt, ok := Parse(rawURL)
	if !ok {
		return now.Add(fallback)
	}
	return expiresAt
}

// Parse extracts the expiry instant from rawURL's query parameters. The
// second result is false when either parameter is absent or malformed;
// callers that always need a usable instant use [At] instead.
func Parse(rawURL string) (time.Time, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, false
	}

	q := u.Query()

	seconds, err := strconv.ParseInt(q.Get(ParamExpires), 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}, false
	}

	issuedAt, ok := decodeCompactTime(q.Get(ParamDate))
	if !ok {
		return time.Time{}, false
	}

	return issuedAt.Add(time.Duration(seconds) * time.Second), true
}

// decodeCompactTime decodes the fixed-width YYYYMMDD'T'HHMMSS'Z' encoding by
// position. Field ranges are validated; anything out of range fails the whole
// decode rather than producing a normalized instant.
func decodeCompactTime(s string) (time.Time, bool) {
	if len(s) != compactTimeLen || s[8] != 'T' || s[15] != 'Z' {
		return time.Time{}, false
	}

	year, ok := atoiStrict(s[0:4])
	if !ok {
		return time.Time{}, false
	}
	month, ok := atoiStrict(s[4:6])
	if !ok || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, ok := atoiStrict(s[6:8])
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}
	hour, ok := atoiStrict(s[9:11])
	if !ok || hour > 23 {
		return time.Time{}, false
	}
	minute, ok := atoiStrict(s[11:13])
	if !ok || minute > 59 {
		return time.Time{}, false
	}
	second, ok := atoiStrict(s[13:15])
	if !ok || second > 59 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

func atoiStrict(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
