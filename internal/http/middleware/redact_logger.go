package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// redactor scrubs obvious personal data from values that end up in access
// logs. Bodies are never logged, so only query strings and headers pass
// through it.
type redactor struct {
	masked map[string]struct{}
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// digits only, so hex runs inside UUIDs never match. A leading + has no
	// word boundary before it and is matched as its own branch.
	phoneRE = regexp.MustCompile(`(?:\+\d{1,3}[ .-]?|\b(?:\d{1,3}[ .-]?)?)(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// newRedactor masks Authorization, Cookie, Set-Cookie and Idempotency-Key
// plus any extra header names (case-insensitive).
func newRedactor(extra []string) *redactor {
	r := &redactor{masked: map[string]struct{}{
		"authorization":   {},
		"cookie":          {},
		"set-cookie":      {},
		"idempotency-key": {},
	}}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.masked[h] = struct{}{}
		}
	}
	return r
}

// scrub replaces UUIDs, then emails, then phone numbers. UUIDs go first so
// the phone pattern cannot eat their digit groups.
func (r *redactor) scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// headers returns a flattened copy of h with masked headers hidden and the
// rest scrubbed.
func (r *redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}
