package markup

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var slugReplacer = strings.NewReplacer(
	"ß", "ss",
	"ä", "ae",
	"æ", "ae",
	"ð", "dh",
	"ö", "oe",
	"ü", "ue",
	"þ", "th",
)

var slugWordRe = regexp.MustCompile(`[^a-zA-Z0-9ßäæðöüþ]+`)

// Slugify turns text into an id: words are split on anything but ASCII
// alphanumerics and a few transliterated letters, decomposed, stripped to
// ASCII and joined with "-". Case is kept.
func Slugify(text string) string {
	var words []string
	for _, word := range slugWordRe.Split(strings.TrimSpace(text), -1) {
		if word == "" {
			continue
		}
		word = norm.NFKD.String(slugReplacer.Replace(word))
		word = strings.Map(func(r rune) rune {
			if r > 127 {
				return -1
			}
			return r
		}, word)
		if word != "" {
			words = append(words, word)
		}
	}
	return strings.Join(words, "-")
}
