package dataset

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var htmlEntities = [][2]string{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&nbsp;", " "},
}

var (
	urlPattern  = regexp2.MustCompile(`(https?://\S+|www\.\S+)`, regexp2.IgnoreCase)
	userPattern = regexp2.MustCompile(`(?<!\w)@\w+`, regexp2.None)
	numPattern  = regexp2.MustCompile(`(?<!\w)\d+([.,]\d+)?(?!\w)`, regexp2.None)
)

// TextNormalizer masks URLs, user mentions, and numbers.
type TextNormalizer struct{}

// Normalize implements the text normalization used for text_norm.
func (TextNormalizer) Normalize(text string) string {
	return NormalizeText(text)
}

// NormalizeText unescapes a small set of HTML entities, replaces URLs with
// <url>, @mentions with <user>, standalone numbers with <num>, and
// collapses whitespace.
func NormalizeText(text string) string {
	s := text
	for _, entity := range htmlEntities {
		s = strings.ReplaceAll(s, entity[0], entity[1])
	}
	s = replaceAll(urlPattern, s, "<url>")
	s = replaceAll(userPattern, s, "<user>")
	s = replaceAll(numPattern, s, "<num>")
	return strings.Join(strings.Fields(s), " ")
}

func replaceAll(re *regexp2.Regexp, input string, replacement string) string {
	out, err := re.Replace(input, replacement, -1, -1)
	if err != nil {
		// Only a match timeout can fail here and none is configured.
		return input
	}
	return out
}
