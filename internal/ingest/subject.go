package ingest

import (
	"regexp"
	"strings"
)

// MaxSubjectLen is the longest subject stored or used as a thread key,
// matching the RFC 5322 line-length bound for the field.
const MaxSubjectLen = 998

// replyPrefix matches a single leading reply or forward marker.
var replyPrefix = regexp.MustCompile(`(?i)^(re|fwd|fw):\s*`)

// NormalizeSubject strips one leading "Re:"/"Fwd:"/"Fw:" marker, trims
// surrounding whitespace, and truncates to MaxSubjectLen. It reports ok=false
// when the subject is empty before or after normalization, which callers
// treat as "no thread". Only one prefix layer is stripped per call:
// "Re: Re: X" normalizes to "Re: X".
func NormalizeSubject(subject string) (string, bool) {
	s := strings.TrimSpace(subject)
	if s == "" {
		return "", false
	}

	s = replyPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	return TruncateSubject(s), true
}

// TruncateSubject bounds a subject to MaxSubjectLen characters.
func TruncateSubject(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxSubjectLen {
		return s
	}
	return string(runes[:MaxSubjectLen])
}
