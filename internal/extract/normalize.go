package extract

import (
	"regexp"
	"strings"
)

var (
	softHyphen        = strings.NewReplacer("­", "")
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,;:?!%])`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
	brokenHyphenation = regexp.MustCompile(`-\s*\n`)
)

// normalize cleans extracted text: drops soft hyphens, re-joins words broken
// across line ends, removes space before punctuation and collapses runs of
// whitespace to single spaces.
func normalize(t string) string {
	t = softHyphen.Replace(t)
	t = brokenHyphenation.ReplaceAllString(t, "")
	t = spaceBeforePunct.ReplaceAllString(t, "$1")
	t = whitespaceRuns.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
