package glue

import (
	"regexp"
	"strings"
)

// Keyword recognizes glue events by title. Matching is a case-insensitive
// substring test, so "Glueless" is a glue event too.
type Keyword struct {
	word  string
	title string
	re    *regexp.Regexp
}

// NewKeyword returns a Keyword matching word and rewriting every occurrence
// of it to title.
func NewKeyword(word, title string) Keyword {
	return Keyword{
		word:  strings.ToLower(word),
		title: title,
		re:    regexp.MustCompile("(?i)" + regexp.QuoteMeta(word)),
	}
}

func (k Keyword) Match(title string) bool {
	return k.word != "" && strings.Contains(strings.ToLower(title), k.word)
}

// Canonical rewrites every occurrence of the keyword in title to its
// canonical casing, leaving the rest of the title untouched.
func (k Keyword) Canonical(title string) string {
	if k.re == nil {
		return title
	}
	return k.re.ReplaceAllLiteralString(title, k.title)
}
