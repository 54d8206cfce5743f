package render

import "regexp"

// LineBreak replaces every non-breaking-space entity left in a message
const LineBreak = "<br>"

var (
	trailingEmptyParagraph = regexp.MustCompile(`(?i)<p(?:\s[^>]*)?>\s*&nbsp;?\s*</p\s*>\s*$`)
	trailingNbsp           = regexp.MustCompile(`(?i)(?:&nbsp;?\s*)+$`)
	nbspEntity             = regexp.MustCompile(`(?i)&nbsp;?`)
)

// Sanitize strips a trailing empty paragraph and trailing &nbsp; runs, then
// turns the remaining &nbsp; entities into line breaks. The steps are order
// dependent and the result is stable under a second pass.
func Sanitize(s string) string {
	s = trailingEmptyParagraph.ReplaceAllString(s, "")
	s = trailingNbsp.ReplaceAllString(s, "")
	return nbspEntity.ReplaceAllString(s, LineBreak)
}
