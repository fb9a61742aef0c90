package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// space is the ASCII whitespace class, including \v and the \x1c-\x1f
// separators that RE2's \s leaves out.
const space = `\t\n\v\f\r \x1c-\x1f`

var (
	// disallowed matches everything except word characters, whitespace and hyphens.
	disallowed = regexp.MustCompile(`[^\w` + space + `-]`)
	// separators matches runs that collapse into a single underscore.
	separators = regexp.MustCompile(`[-` + space + `]+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// asciiFold decomposes accented letters and drops whatever is left outside ASCII.
func asciiFold() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return r > unicode.MaxASCII
		})),
	)
}

// Make returns the slug of name: accents folded to ASCII, punctuation removed,
// lowercased, and whitespace or hyphen runs replaced by "_".
// The result may be empty when name has no ASCII-representable characters.
func Make(name string) string {
	folded, _, err := transform.String(asciiFold(), name)
	if err != nil {
		// Only reachable on malformed transformer chains; keep the raw name.
		folded = name
	}

	folded = disallowed.ReplaceAllString(folded, "")
	folded = strings.ToLower(strings.TrimFunc(folded, isSpace))

	return separators.ReplaceAllString(folded, "_")
}

// Rename reports the slug for name and whether a directory called name should
// be renamed to it. Names whose slug is empty or only differs by case are kept.
func Rename(name string) (string, bool) {
	s := Make(name)
	if s == "" || s == strings.ToLower(name) {
		return s, false
	}

	return s, true
}
