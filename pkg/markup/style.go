package markup

import (
	"regexp"
	"strings"
)

var (
	cssURLRe    = regexp.MustCompile(`url\s*\(\s*[^\s)]+?\s*\)\s*`)
	cssSanityRe = regexp.MustCompile(`^(?:[:,;#%.\sa-zA-Z0-9!]|\w-\w|'[\s\w]+'|"[\s\w]+"|\([\d,\s]+\))*$`)
	cssPairRe   = regexp.MustCompile(`([-\w]+)\s*:\s*([^:;]*)`)
	cssUnitRe   = regexp.MustCompile(`^(?:#[0-9a-f]+|rgb\(\d+%?,\d*%?,?\d*%?\)?|\d{0,2}\.?\d{0,2}(?:cm|em|ex|in|mm|pc|pt|px|%|,|\))?)$`)
)

var cssProperties = map[string]bool{
	"azimuth": true, "background-color": true, "border-bottom-color": true,
	"border-collapse": true, "border-color": true, "border-left-color": true,
	"border-right-color": true, "border-top-color": true, "clear": true,
	"color": true, "cursor": true, "direction": true, "display": true,
	"elevation": true, "float": true, "font": true, "font-family": true,
	"font-size": true, "font-style": true, "font-variant": true,
	"font-weight": true, "height": true, "letter-spacing": true,
	"line-height": true, "overflow": true, "pause": true, "pause-after": true,
	"pause-before": true, "pitch": true, "pitch-range": true, "richness": true,
	"speak": true, "speak-header": true, "speak-numeral": true,
	"speak-punctuation": true, "speech-rate": true, "stress": true,
	"text-align": true, "text-decoration": true, "text-indent": true,
	"unicode-bidi": true, "vertical-align": true, "voice-family": true,
	"volume": true, "white-space": true, "width": true, "max-width": true,
}

var cssKeywords = map[string]bool{
	"auto": true, "aqua": true, "black": true, "block": true, "blue": true,
	"bold": true, "both": true, "bottom": true, "brown": true, "center": true,
	"collapse": true, "dashed": true, "dotted": true, "fuchsia": true,
	"gray": true, "green": true, "!important": true, "italic": true,
	"left": true, "lime": true, "maroon": true, "medium": true, "none": true,
	"navy": true, "normal": true, "nowrap": true, "olive": true,
	"pointer": true, "purple": true, "red": true, "right": true, "solid": true,
	"silver": true, "teal": true, "top": true, "transparent": true,
	"underline": true, "white": true, "yellow": true,
}

// FilterStyle keeps the whitelisted declarations of an inline style. Input
// that does not look like plain CSS is dropped entirely.
func FilterStyle(css string) string {
	if css == "" {
		return ""
	}
	css = cssURLRe.ReplaceAllString(css, " ")
	if !cssSanityRe.MatchString(css) {
		return ""
	}
	var clean []string
	for _, m := range cssPairRe.FindAllStringSubmatch(css, -1) {
		prop, value := m[1], m[2]
		if value == "" {
			continue
		}
		lower := strings.ToLower(prop)
		if cssProperties[lower] {
			clean = append(clean, prop+": "+value)
			continue
		}
		family, _, _ := strings.Cut(lower, "-")
		switch family {
		case "background", "border", "margin", "padding":
		default:
			continue
		}
		ok := true
		for _, keyword := range strings.Fields(value) {
			if !cssKeywords[keyword] && !cssUnitRe.MatchString(keyword) {
				ok = false
				break
			}
		}
		if ok {
			clean = append(clean, prop+": "+value)
		}
	}
	return strings.Join(clean, "; ")
}
