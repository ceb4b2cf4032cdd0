package llm

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	reLangTag      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+.-]*$`)
	reTaggedInline = regexp.MustCompile(`(?s)^[A-Za-z][A-Za-z0-9_+.-]*\s+([\[{].*)$`)
)

// StripCodeFence removes a markdown code fence wrapped around s. Text that does
// not start with a fence is only trimmed. The opening line is dropped when it is
// empty or a bare language tag; a closing fence is dropped when present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	rest := strings.TrimPrefix(s, fence)

	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		header := strings.TrimSpace(rest[:nl])
		if header == "" || reLangTag.MatchString(header) {
			rest = rest[nl+1:]
		}
	} else {
		// single line: ```json {...}```
		rest = strings.TrimSpace(strings.TrimSuffix(rest, fence))
		if m := reTaggedInline.FindStringSubmatch(rest); m != nil {
			rest = m[1]
		}
		return strings.TrimSpace(rest)
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, fence)
	return strings.TrimSpace(rest)
}
